package models

// Document store collection names
const (
	CollectionCitizens      = "citizens"
	CollectionPayments      = "payments"
	CollectionDisputes      = "disputes"
	CollectionRTAccounts    = "rt_accounts"
	CollectionAdmins        = "admins"
	CollectionNotifications = "notifications"
)
