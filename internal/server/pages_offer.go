package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// errNotResendable rejects a resend for an offer that was never sent.
var errNotResendable = errors.New("only sent offers can be resent")

type offersData struct {
	Offers   []types.Offer
	Statuses []types.OfferStatus
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "Offer Management"}
	list, err := s.api.Offers.List(r.Context())
	if err != nil {
		s.fetchFailed(w, r, "offers", pd, err, "Failed to load offers")
		return
	}
	pd.Data = offersData{Offers: list, Statuses: types.OfferStatuses}
	s.render(w, r, http.StatusOK, "offers", pd)
}

func (s *Server) handleOfferCreateForm(w http.ResponseWriter, r *http.Request) {
	// Prefill from links such as the assessment detail page.
	f := newForm(nil)
	for _, k := range []string{"candidate_id", "job_id", "positionTitle", "candidate_email"} {
		if v := r.URL.Query().Get(k); v != "" {
			f.Values.Set(k, v)
		}
	}
	s.render(w, r, http.StatusOK, "offer_create", &pageData{Title: "Create Offer", Form: f})
}

func (s *Server) handleOfferCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	f := newForm(r.PostForm)
	pd := &pageData{Title: "Create Offer", Form: f}

	req := types.CreateOfferRequest{
		CandidateID:    strings.TrimSpace(r.PostForm.Get("candidate_id")),
		JobID:          strings.TrimSpace(r.PostForm.Get("job_id")),
		PositionTitle:  strings.TrimSpace(r.PostForm.Get("positionTitle")),
		CandidateEmail: strings.TrimSpace(r.PostForm.Get("candidate_email")),
	}
	raw := strings.TrimSpace(r.PostForm.Get("baseSalary"))
	salary, parseErr := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if parseErr == nil {
		req.BaseSalary = salary
	}

	valid := f.check(&req)
	if raw != "" && parseErr != nil {
		f.Errors["baseSalary"] = "Enter a number"
	}
	if !valid || f.Invalid() {
		s.render(w, r, http.StatusUnprocessableEntity, "offer_create", pd)
		return
	}

	offer, err := s.api.Offers.Create(r.Context(), req)
	if err != nil {
		if s.signedOut(w, r) {
			return
		}
		s.log.Warn("offer creation failed", zap.Error(err))
		f.Message = httpclient.UserMessage(err, "Failed to create offer")
		s.render(w, r, HTTPStatus(err), "offer_create", pd)
		return
	}

	s.log.Info("offer created", zap.String("offer_id", offer.Key()))
	s.setFlash(r.Context(), flashSuccess, "Offer created successfully")
	seeOther(w, r, "/dashboard/offer")
}

// handleOfferResend re-sends the offer letter. The offer is read first so a
// forged request cannot resend a draft.
func (s *Server) handleOfferResend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/dashboard/offer"

	offer, err := s.api.Offers.Get(r.Context(), id)
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to resend offer", back)
		return
	}
	if !offer.CanResend() {
		s.setFlash(r.Context(), flashError, errNotResendable.Error())
		seeOther(w, r, back)
		return
	}
	if _, err := s.api.Offers.Resend(r.Context(), id); err != nil {
		s.mutationFailed(w, r, err, "Failed to resend offer", back)
		return
	}
	s.setFlash(r.Context(), flashSuccess, "Offer letter resent successfully")
	seeOther(w, r, back)
}

func (s *Server) handleOfferStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	back := "/dashboard/offer"

	req := types.UpdateOfferStatusRequest{Status: types.OfferStatus(r.PostForm.Get("status"))}
	if err := req.Validate(); err != nil {
		s.setFlash(r.Context(), flashError, "Unknown offer status")
		seeOther(w, r, back)
		return
	}
	if _, err := s.api.Offers.UpdateStatus(r.Context(), id, req.Status); err != nil {
		s.mutationFailed(w, r, err, "Failed to update offer status", back)
		return
	}
	s.setFlash(r.Context(), flashSuccess, "Offer marked "+types.Humanize(string(req.Status)))
	seeOther(w, r, back)
}
