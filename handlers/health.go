package handlers

import (
	"context"
	"fmt"
	"runtime"

	webhooks "github.com/onetakeda/sapio-webhooks"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// TestConnection verifies the platform can reach the webhook server. It
// answers with a popup carrying build info so an admin can see at a glance
// which build responded.
type TestConnection struct{}

func NewTestConnection() *TestConnection {
	return &TestConnection{}
}

func (h *TestConnection) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	// Second leg of the popup round trip; the user already saw the dialog.
	if wctx.ClientCallbackResult != nil {
		return webhook.NewResult(true), nil
	}

	message := "<b>Connecting user:</b>\n" + wctx.Username +
		"\n\n<b>Webhook build info:</b>\n" + buildInfo()

	return webhook.NewOKPopupResult("Webhook Successfully Executed", message), nil
}

func buildInfo() string {
	return fmt.Sprintf("version %s (%s %s/%s)",
		webhooks.GetVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// ReturnPopupFalse is a wiring smoke test: it always shows an error popup
// and fails.
type ReturnPopupFalse struct{}

func NewReturnPopupFalse() *ReturnPopupFalse {
	return &ReturnPopupFalse{}
}

func (h *ReturnPopupFalse) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	return webhook.NewErrorPopupResult("This is an error"), nil
}
