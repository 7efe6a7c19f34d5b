package handlers

import (
	"time"

	"album-server/internal/collection"
	"album-server/internal/mailer"
	"album-server/internal/participation"
	"album-server/internal/startup"
	"album-server/internal/thumbnail"
)

type Handlers struct {
	library   *collection.Library
	store     *participation.Store
	mail      *mailer.Mailer
	thumbs    *thumbnail.Cache
	config    *startup.Config
	startTime time.Time
}

func New(library *collection.Library, store *participation.Store, mail *mailer.Mailer, thumbs *thumbnail.Cache, config *startup.Config) *Handlers {
	return &Handlers{
		library:   library,
		store:     store,
		mail:      mail,
		thumbs:    thumbs,
		config:    config,
		startTime: time.Now(),
	}
}
