package cmd

import (
	"context"
	"time"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/config"
)

// serviceClients bundles one client per backend for the one-shot commands.
type serviceClients struct {
	ims *client.IMS
	oms *client.OMS
	wms *client.WMS
	sms *client.SMS
}

// newServiceClients builds clients from loaded config. One-shot commands log
// to stderr since they own no alternate screen.
func newServiceClients() (*serviceClients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	build := func(base string) client.Options {
		return client.Options{
			BaseURL: base,
			Token:   cfg.Services.Token,
			Timeout: cfg.Services.Timeout(),
		}
	}

	ims, err := client.NewIMS(build(cfg.Services.IMSBaseURL))
	if err != nil {
		return nil, err
	}
	oms, err := client.NewOMS(build(cfg.Services.OMSBaseURL))
	if err != nil {
		return nil, err
	}
	wms, err := client.NewWMS(build(cfg.Services.WMSBaseURL))
	if err != nil {
		return nil, err
	}
	sms, err := client.NewSMS(build(cfg.Services.SMSBaseURL))
	if err != nil {
		return nil, err
	}
	return &serviceClients{ims: ims, oms: oms, wms: wms, sms: sms}, nil
}

// commandContext bounds every one-shot request.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
