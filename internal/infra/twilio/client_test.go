package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendWhatsApp(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("unexpected credentials %s:%s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"From": r.PostForm.Get("From"),
			"To":   r.PostForm.Get("To"),
			"Body": r.PostForm.Get("Body"),
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid": "SM999", "status": "queued"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "whatsapp:+14155238886",
		BaseURL:    srv.URL,
	})

	result, err := c.SendWhatsApp(context.Background(), "whatsapp:+15551234567", "hello")
	if err != nil {
		t.Fatalf("SendWhatsApp failed: %v", err)
	}
	if result.SID != "SM999" {
		t.Errorf("SID = %s, want SM999", result.SID)
	}
	if gotForm["From"] != "whatsapp:+14155238886" || gotForm["To"] != "whatsapp:+15551234567" || gotForm["Body"] != "hello" {
		t.Errorf("unexpected form payload %v", gotForm)
	}
}

func TestSendWhatsApp_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": 21211, "message": "Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL})

	_, err := c.SendWhatsApp(context.Background(), "not-a-number", "hello")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "twilio error 21211 (status 400): Invalid 'To' Phone Number"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestAccountProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"friendly_name": "Workload Insights", "status": "active"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL})

	name, err := c.AccountProbe(context.Background())
	if err != nil {
		t.Fatalf("AccountProbe failed: %v", err)
	}
	if name != "Workload Insights" {
		t.Errorf("friendly name = %q, want %q", name, "Workload Insights")
	}
}
