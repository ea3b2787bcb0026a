package services

import (
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// ContainerOptions tunes the services built by NewContainer.
type ContainerOptions struct {
	SettingsTTL time.Duration
	Clock       func() time.Time
}

// NewContainer wires every service around one store. The settings service is created
// first and handed to the services that need currency or fiscal-year lookups.
func NewContainer(store portsrepo.Store, cache portsrepo.SettingsCache, opts ContainerOptions) *portssvc.ServiceContainer {
	settings := NewSettingsService(store, cache, WithSettingsTTL(opts.SettingsTTL), WithSettingsClock(opts.Clock))
	journals := NewJournalService(store, settings, WithJournalClock(opts.Clock))

	return &portssvc.ServiceContainer{
		Account:        NewAccountService(store, WithAccountClock(opts.Clock)),
		Journal:        journals,
		Invoice:        NewInvoiceService(store, settings, WithInvoiceClock(opts.Clock)),
		Reporting:      NewReportingService(store, settings),
		Settings:       settings,
		Reconciliation: NewReconciliationService(store, WithReconciliationClock(opts.Clock)),
		Template:       NewTemplateService(journals),
	}
}
