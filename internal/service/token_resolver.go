package service

import (
	"strings"

	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/tokencodec"
)

// resolveToken looks up a scanned identifier through the codec's single decision rule
func resolveToken(repo repository.RedemptionTokenRepository, identifier string) (*models.RedemptionToken, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	if tokencodec.Classify(identifier) == tokencodec.KindOpaqueID {
		return repo.GetByID(identifier)
	}
	return repo.GetByHash(tokencodec.Hash(identifier))
}
