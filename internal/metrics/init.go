package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, precision := range []string{"unknown", "year", "month", "full"} {
		FilenameParsesTotal.WithLabelValues(precision)
	}

	for _, op := range []string{"folders", "subfolders", "photos", "stats"} {
		for _, status := range []string{"success", "degraded", "error"} {
			CollectionLookupsTotal.WithLabelValues(op, status)
		}
	}

	for _, event := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		WatcherEventsTotal.WithLabelValues(event)
	}

	for _, status := range []string{"accepted", "rejected", "error"} {
		ParticipationsTotal.WithLabelValues(status)
	}

	for _, kind := range []string{"notification", "confirmation"} {
		MailSendsTotal.WithLabelValues(kind, "success")
		MailSendsTotal.WithLabelValues(kind, "error")
	}
}
