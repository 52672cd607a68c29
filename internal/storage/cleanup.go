package storage

import (
	"context"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/utils"
)

const cleanupWorkers = 4

type CleanupFailure struct {
	PublicID string `json:"publicId"`
	Error    string `json:"error"`
}

// CleanupReport is the outcome of removing the images of a deleted document.
type CleanupReport struct {
	Removed []string         `json:"removed"`
	Failed  []CleanupFailure `json:"failed,omitempty"`
}

func (r CleanupReport) OK() bool { return len(r.Failed) == 0 }

// RemoveAll deletes every hosted image. Images without a public id are
// external links and are left alone; images already gone count as removed.
func RemoveAll(ctx context.Context, s ImageStore, images []models.Image) CleanupReport {
	var ids []string
	for _, img := range images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}

	report := CleanupReport{Removed: []string{}}
	_, errs := utils.Map(ids, cleanupWorkers, func(publicID string) (struct{}, error) {
		ns, id, ok := SplitPublicID(publicID)
		if !ok {
			return struct{}{}, apperr.New(apperr.Validation, "malformed public id")
		}
		return struct{}{}, s.Delete(ctx, ns, id)
	})

	for i, err := range errs {
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			report.Failed = append(report.Failed, CleanupFailure{PublicID: ids[i], Error: err.Error()})
			continue
		}
		report.Removed = append(report.Removed, ids[i])
	}
	return report
}
