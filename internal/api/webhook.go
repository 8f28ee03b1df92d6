package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/insights/metrics"
)

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// handleTwilioWebhook receives inbound WhatsApp messages. Twilio redelivers
// on non-2xx, so transient persistence failures answer 503 and the dedup
// mark is cleared to let the redelivery through.
func (s *Server) handleTwilioWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		metrics.WebhooksReceived.WithLabelValues("bad_payload").Inc()
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	sid := r.PostForm.Get("MessageSid")
	from := r.PostForm.Get("From")
	if sid == "" || from == "" {
		metrics.WebhooksReceived.WithLabelValues("bad_payload").Inc()
		writeError(w, http.StatusBadRequest, "MessageSid and From are required")
		return
	}

	ctx := r.Context()

	if s.dedup != nil {
		first, err := s.dedup.MarkDelivery(ctx, sid, s.webhook.DedupTTL)
		if err != nil {
			// Dedup is best effort; losing it only risks a duplicate row
			s.log.Warn("webhook dedup unavailable", "sid", sid, "error", err)
		} else if !first {
			metrics.WebhooksReceived.WithLabelValues("duplicate").Inc()
			s.log.Debug("duplicate webhook delivery ignored", "sid", sid)
			writeTwiML(w)
			return
		}
	}

	msg := &domain.Message{
		ID:          uuid.New(),
		TwilioSID:   sid,
		Direction:   domain.MessageInbound,
		From:        from,
		To:          r.PostForm.Get("To"),
		Body:        r.PostForm.Get("Body"),
		ProfileName: r.PostForm.Get("ProfileName"),
		ReceivedAt:  time.Now().UTC(),
	}

	user, err := s.repos.Users.GetByPhone(ctx, strings.TrimPrefix(from, "whatsapp:"))
	if err != nil {
		s.failWebhook(ctx, w, sid, err)
		return
	}
	if user != nil {
		msg.UserID = &user.ID
	}

	if err := s.repos.Messages.Save(ctx, msg); err != nil {
		s.failWebhook(ctx, w, sid, err)
		return
	}

	if user != nil {
		if err := s.recordActivity(ctx, user, r); err != nil {
			s.failWebhook(ctx, w, sid, err)
			return
		}
	} else {
		s.log.Info("message from unknown sender stored without activity", "sid", sid, "from", from)
	}

	metrics.WebhooksReceived.WithLabelValues("ok").Inc()

	if s.webhook.AutoAck && s.sender != nil && user != nil {
		if err := s.sender.SendWhatsApp(ctx, from, "Recorded. Thanks, "+user.Name+"."); err != nil {
			// The message is already persisted; a lost ack is not worth a retry
			s.log.Warn("failed to send acknowledgment", "sid", sid, "error", err)
			metrics.MessagesSent.WithLabelValues("failed").Inc()
		} else {
			metrics.MessagesSent.WithLabelValues("sent").Inc()
		}
	}

	writeTwiML(w)
}

// recordActivity turns a message into an activity when its body names a
// known category with a leading #tag (e.g. "#delivery dropped off pallets").
func (s *Server) recordActivity(ctx context.Context, user *domain.User, r *http.Request) error {
	body := strings.TrimSpace(r.PostForm.Get("Body"))
	if !strings.HasPrefix(body, "#") {
		return nil
	}

	tag, description, _ := strings.Cut(body[1:], " ")
	category, err := s.repos.Categories.GetByName(ctx, tag)
	if err != nil {
		return err
	}
	if category == nil {
		s.log.Debug("message tag matches no category", "tag", tag, "user", user.Name)
		return nil
	}

	activity := &domain.Activity{
		ID:          uuid.New(),
		UserID:      user.ID,
		CategoryID:  category.ID,
		Description: strings.TrimSpace(description),
		Source:      domain.ActivitySourceWhatsApp,
		OccurredAt:  time.Now().UTC(),
	}

	// WhatsApp location messages carry coordinates we can match to a fence
	if lat, lng, ok := parseLocation(r); ok {
		fences, err := s.repos.Geofences.List(ctx)
		if err != nil {
			return err
		}
		for _, f := range fences {
			if f.Contains(lat, lng) {
				id := f.ID
				activity.GeofenceID = &id
				break
			}
		}
	}

	return s.repos.Activities.Save(ctx, activity)
}

func parseLocation(r *http.Request) (lat, lng float64, ok bool) {
	rawLat := r.PostForm.Get("Latitude")
	rawLng := r.PostForm.Get("Longitude")
	if rawLat == "" || rawLng == "" {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lng, errLng := strconv.ParseFloat(rawLng, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (s *Server) failWebhook(ctx context.Context, w http.ResponseWriter, sid string, err error) {
	metrics.WebhooksReceived.WithLabelValues("error").Inc()

	// Forget the SID so Twilio's redelivery is not treated as a duplicate.
	// The failure may itself be Twilio hanging up mid-retry, which kills the
	// request context, so the clear runs detached from it.
	if s.dedup != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if cerr := s.dedup.ClearDelivery(cctx, sid); cerr != nil {
			s.log.Warn("failed to clear dedup mark", "sid", sid, "error", cerr)
		}
	}
	writeStorageError(s.log, w, err)
}

func writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(emptyTwiML))
}
