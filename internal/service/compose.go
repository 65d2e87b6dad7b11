package service

import (
	"comic_poster/internal/domain"
	"comic_poster/internal/notifier/discord"
	"comic_poster/internal/source/gocomics"
)

func composePayload(sel *Selection, pageURL, date string) *domain.NotificationPayload {
	name := sel.Metadata.Name
	if name == "" {
		name = "Today's comic"
	}

	return &domain.NotificationPayload{
		Caption:     discord.Caption(name, pageURL),
		Filename:    gocomics.AttachmentName(date, sel.Image.ContentType),
		Attachment:  sel.Image.Bytes,
		ContentType: sel.Image.ContentType,
	}
}
