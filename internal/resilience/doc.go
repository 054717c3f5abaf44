// Package resilience groups the fault tolerance helpers used around outbound
// calls: circuit breakers for the lead notification webhooks and retry with
// exponential backoff for webhook delivery and the startup database ping.
//
//	b := circuitbreaker.New(circuitbreaker.ForWebhook("slack"))
//	err := b.Run(func() error {
//	    return retry.WebhookPolicy().Do(ctx, "slack webhook", send)
//	})
package resilience
