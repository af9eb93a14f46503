package services

// ServiceContainer holds every service the handlers and workers use.
type ServiceContainer struct {
	RequestService      RequestService
	NotificationService NotificationService
	ReconcileService    ReconcileService
	ExportService       ExportService
	CalendarService     CalendarService
}
