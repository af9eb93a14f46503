package handlers

type AppHandlers struct {
	RequestHandler      *RequestHandler
	NotificationHandler *NotificationHandler
	ReportHandler       *ReportHandler
	CronHandler         *CronHandler
	HealthHandler       *HealthHandler
}
