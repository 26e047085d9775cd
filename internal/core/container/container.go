package container

import (
	"time"

	"go.uber.org/zap"

	"stockledger/internal/accounts"
	"stockledger/internal/auditlog"
	"stockledger/internal/balances"
	"stockledger/internal/ledger"
	"stockledger/internal/store"
	"stockledger/internal/transfers"
	"stockledger/pkg/security"
)

// displayTTL bounds how stale the balance listing may be. Mutating paths
// always bypass it.
const displayTTL = 5 * time.Second

type Container struct {
	Store           store.RowStore
	Loader          *ledger.Loader
	AuditLog        *auditlog.AuditLog
	LoginHandler    *security.LoginHandler
	AccountsHandler *accounts.AccountsHandler
	TransferHandler *transfers.TransferHandler
	BalancesHandler *balances.BalancesHandler
	AuditHandler    *auditlog.AuditHandler
}

func NewAppContainer(rowStore store.RowStore, logger *zap.Logger) *Container {
	loader := ledger.NewLoader(rowStore, displayTTL)
	auditLog := auditlog.NewAuditLog(rowStore)
	accountRepo := accounts.NewRepository(rowStore)
	accountService := accounts.NewService(accountRepo, rowStore)
	transferService := transfers.NewService(rowStore, loader, auditLog, accountService, logger)

	return &Container{
		Store:           rowStore,
		Loader:          loader,
		AuditLog:        auditLog,
		LoginHandler:    security.NewLoginHandler(accountRepo),
		AccountsHandler: accounts.NewHandler(accountService),
		TransferHandler: transfers.NewHandler(transferService),
		BalancesHandler: balances.NewHandler(loader),
		AuditHandler:    auditlog.NewHandler(auditLog),
	}
}
