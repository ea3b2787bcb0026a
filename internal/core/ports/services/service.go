package services

// ServiceContainer holds instances of all the application services.
// It is the entry point handlers use to reach the engine.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Invoice        InvoiceSvcFacade
	Reporting      ReportingSvcFacade
	Settings       SettingsSvcFacade
	Reconciliation ReconciliationSvcFacade
	Template       TemplateSvcFacade
}
