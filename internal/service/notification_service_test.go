package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
)

func notifyTestInput() DispatchInput {
	return DispatchInput{
		Event:         constants.NotifyEventOrderPlaced,
		OrderNo:       "ORD20260830120000123456",
		Amount:        "266.00",
		CustomerName:  "Ana Cruz",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "+639171234567",
	}
}

func TestDispatchAllChannels(t *testing.T) {
	email := &fakeEmailSender{configured: true}
	sms := &fakeSMSSender{configured: true}
	svc := NewNotificationService(config.NotifyConfig{
		OwnerEmail: "owner@kimkles.ph",
		OwnerPhone: "+639170000000",
	}, email, sms)

	result, err := svc.Dispatch(context.Background(), notifyTestInput())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.TotalAttempted != 4 || result.SuccessCount != 4 {
		t.Fatalf("expected 4/4, got %d/%d", result.SuccessCount, result.TotalAttempted)
	}
	wantChannels := []string{
		constants.NotifyChannelOwnerEmail,
		constants.NotifyChannelOwnerSMS,
		constants.NotifyChannelCustomerEmail,
		constants.NotifyChannelCustomerSMS,
	}
	for i, want := range wantChannels {
		if result.Details[i].Channel != want {
			t.Fatalf("detail %d: expected channel %s, got %s", i, want, result.Details[i].Channel)
		}
	}
	if len(email.sent) != 2 || len(sms.sent) != 2 {
		t.Fatalf("expected 2 emails and 2 sms, got %d/%d", len(email.sent), len(sms.sent))
	}
}

func TestDispatchSkipsUnconfiguredChannels(t *testing.T) {
	email := &fakeEmailSender{configured: true}
	sms := &fakeSMSSender{configured: false}
	svc := NewNotificationService(config.NotifyConfig{
		OwnerEmail: "owner@kimkles.ph",
		OwnerPhone: "+639170000000",
	}, email, sms)

	input := notifyTestInput()
	input.CustomerPhone = ""
	result, err := svc.Dispatch(context.Background(), input)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.TotalAttempted != 2 || result.SuccessCount != 2 {
		t.Fatalf("expected 2/2, got %d/%d", result.SuccessCount, result.TotalAttempted)
	}
	if result.Details[0].Channel != constants.NotifyChannelOwnerEmail ||
		result.Details[1].Channel != constants.NotifyChannelCustomerEmail {
		t.Fatalf("unexpected channels: %+v", result.Details)
	}
	if len(sms.sent) != 0 {
		t.Fatalf("sms channel must not be used, got %d sends", len(sms.sent))
	}
}

func TestDispatchPartialFailureStillSucceeds(t *testing.T) {
	email := &fakeEmailSender{
		configured: true,
		failFor:    map[string]error{"ana@example.com": errors.New("provider rejected")},
	}
	sms := &fakeSMSSender{configured: true}
	svc := NewNotificationService(config.NotifyConfig{
		OwnerEmail: "owner@kimkles.ph",
		OwnerPhone: "+639170000000",
	}, email, sms)

	result, err := svc.Dispatch(context.Background(), notifyTestInput())
	if err != nil {
		t.Fatalf("partial failure must not return an error, got %v", err)
	}
	if result.TotalAttempted != 4 || result.SuccessCount != 3 {
		t.Fatalf("expected 3/4, got %d/%d", result.SuccessCount, result.TotalAttempted)
	}
	customerEmail := result.Details[2]
	if customerEmail.Success || customerEmail.Error == "" {
		t.Fatalf("expected recorded failure for customer email, got %+v", customerEmail)
	}
}

func TestDispatchAllFailedReturnsError(t *testing.T) {
	email := &fakeEmailSender{
		configured: true,
		failFor: map[string]error{
			"owner@kimkles.ph": errors.New("down"),
			"ana@example.com":  errors.New("down"),
		},
	}
	sms := &fakeSMSSender{
		configured: true,
		failFor: map[string]error{
			"+639170000000": errors.New("down"),
			"+639171234567": errors.New("down"),
		},
	}
	svc := NewNotificationService(config.NotifyConfig{
		OwnerEmail: "owner@kimkles.ph",
		OwnerPhone: "+639170000000",
	}, email, sms)

	result, err := svc.Dispatch(context.Background(), notifyTestInput())
	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if len(dispatchErr.Details) != 4 {
		t.Fatalf("expected 4 failure details, got %d", len(dispatchErr.Details))
	}
	if result == nil || result.SuccessCount != 0 || result.TotalAttempted != 4 {
		t.Fatalf("expected settled 0/4 result, got %+v", result)
	}
}

func TestDispatchWithoutAnyChannel(t *testing.T) {
	// 一条通道都没配置时不视为失败
	svc := NewNotificationService(config.NotifyConfig{}, &fakeEmailSender{}, &fakeSMSSender{})

	result, err := svc.Dispatch(context.Background(), notifyTestInput())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.TotalAttempted != 0 || result.SuccessCount != 0 || len(result.Details) != 0 {
		t.Fatalf("expected empty settle, got %+v", result)
	}
}
