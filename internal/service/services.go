package service

import (
	"github.com/MKhiriev/go-pass-transfer/internal/config"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
)

type Services struct {
	TransferService TransferService
}

// NewServices wires the transfer service around v. onRefresh, when not
// nil, is called whenever an import transaction is applied or undone.
func NewServices(v vault.Vault, cfg config.StructuredConfig, onRefresh func(), logger *logger.Logger) *Services {
	transfer := NewTransferService(v, cfg.Transfer, onRefresh, logger)

	return &Services{
		TransferService: NewTransferValidationService().Wrap(transfer),
	}
}
