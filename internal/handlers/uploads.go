package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
)

const maxUploadBytes = 10 << 20

var errUploadTooLarge = fmt.Errorf("file exceeds %d MB", maxUploadBytes>>20)

func hasUpload(c *fiber.Ctx, field string) bool {
	_, err := c.FormFile(field)
	return err == nil
}

// saveUpload stores the multipart file under field, if the request has one,
// and returns its URL. A request without the file yields "".
func saveUpload(ctx context.Context, c *fiber.Ctx, store storage.Storage, field, folder string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if fh.Size > maxUploadBytes {
		return "", errUploadTooLarge
	}
	if store == nil {
		return "", errors.New("file storage is not configured")
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return store.Save(ctx, folder, fh.Filename, f, fh.Header.Get("Content-Type"))
}
