package enums

// NotificationEvent names the lifecycle emails the notifier can dispatch.
type NotificationEvent string

const (
	NotificationOrderConfirmation NotificationEvent = "order.confirmation"
	NotificationOrderReceived     NotificationEvent = "order.received"
	NotificationPaymentReceived   NotificationEvent = "payment.received"
	NotificationPaymentRecorded   NotificationEvent = "payment.recorded"
	NotificationOrderShipped      NotificationEvent = "order.shipped"
	NotificationOrderDelivered    NotificationEvent = "order.delivered"
	NotificationOrderCancelled    NotificationEvent = "order.cancelled"
	NotificationWalletTopUp       NotificationEvent = "wallet.topup"
)

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}
