// Package metrics owns the Prometheus collectors of the API server. All
// collectors are registered with the default registry through promauto and
// exposed on /metrics.
//
//	lead, err := svc.Create(ctx, in)
//	if err == nil {
//	    metrics.RecordLeadCreated(string(lead.Kind))
//	}
package metrics
