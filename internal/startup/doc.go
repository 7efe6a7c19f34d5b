// Package startup handles application configuration and structured
// startup/shutdown logging.
//
// Configuration comes from environment variables (optionally seeded from
// a .env file), with sensible defaults for local development:
//
//	PUBLIC_DIR        static site root (default ./public)
//	COLLECTION_DIR    photo collection root (default <public>/assets/images/coleccion)
//	THUMBNAIL_DIR     thumbnail cache (default <public>/assets/images/thumbnails)
//	AUDIO_DIR         narration files (default <public>/assets/audios)
//	UPLOAD_DIR        visitor contributions (default ./uploads)
//	DATA_DIR          participation log (default ./data)
//	PORT              HTTP port (default 3000)
//	METRICS_PORT      Prometheus port (default 9090)
//	SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD,
//	MAIL_FROM, MAIL_OWNER
//
// Required directories (data, upload) are created and write-tested at
// startup; the server refuses to start without them. The thumbnail
// directory is optional: when unavailable, thumbnails are disabled and
// full-size images are served instead.
package startup
