package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/donmikel/savefile/applications/savefile/domain"
	"github.com/donmikel/savefile/applications/savefile/interfaces"
)

// persistSubmission writes the "file" part of submission to storage.
func persistSubmission(ctx context.Context, storage interfaces.Storage, submission domain.Submission) domain.Outcome {
	file, ok := submission.File(domain.FileField)
	if !ok {
		return domain.NoFile()
	}

	if file.Filename == "" {
		return domain.EmptyFilename()
	}

	name, err := domain.SafeFilename(file.Filename)
	if err != nil {
		return domain.StorageFailed(file.Filename, err)
	}

	content, err := file.Content.Bytes()
	if err != nil {
		return domain.StorageFailed(file.Filename, fmt.Errorf("can't recover file bytes: %w", err))
	}

	n, err := storage.UploadFile(ctx, name, bytes.NewReader(content))
	if err != nil {
		return domain.StorageFailed(file.Filename, err)
	}

	return domain.Succeeded(file.Filename, name, n)
}
