// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package flow_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/phoneauth/phoneauth/internal/api"
	"github.com/phoneauth/phoneauth/internal/api/apitest"
	"github.com/phoneauth/phoneauth/internal/country"
	"github.com/phoneauth/phoneauth/internal/flow"
	"github.com/phoneauth/phoneauth/internal/gate"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/toast"
)

var _ = Describe("Sign-in flow against the HTTP backend", func() {
	var (
		ctx      context.Context
		srv      *apitest.Server
		store    *session.MemoryStore
		sessions *session.Manager
		notifier *toast.Notifier
		ctrl     *flow.Controller
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = apitest.NewServer()
		DeferCleanup(srv.Close)

		client, err := api.NewClient(srv.URL)
		Expect(err).NotTo(HaveOccurred())

		store = session.NewMemoryStore()
		sessions, err = session.NewManager(store)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions.Init(ctx)).To(Succeed())

		notifier = toast.NewNotifier(nil)
		DeferCleanup(notifier.Close)

		countries, err := country.NewList(nil, "")
		Expect(err).NotTo(HaveOccurred())

		ctrl, err = flow.NewController(client, sessions, notifier, countries)
		Expect(err).NotTo(HaveOccurred())
	})

	It("moves to OTP entry with the server message", func() {
		srv.ScriptRequestOTP(apitest.Reply{Body: map[string]any{"user_id": 42, "message": "code sent"}})

		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")

		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))
		Expect(ctrl.Snapshot().UserID).To(Equal(int64(42)))
		Expect(notifier.Current()).To(Equal(toast.Message{Kind: toast.KindInfo, Text: "code sent", Visible: true}))

		calls := srv.Calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Body).To(Equal(map[string]any{"name": "Asha", "phone_number": "712345678"}))
	})

	It("persists the verified session and authenticates", func() {
		srv.ScriptRequestOTP(apitest.Reply{Body: map[string]any{"user_id": 42}})
		srv.ScriptVerifyOTP(apitest.Reply{Body: map[string]any{
			"token": "tok1",
			"user":  map[string]any{"name": "Asha", "phone_number": "712345678"},
		}})
		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")

		for i, d := range "135790" {
			ctrl.EnterDigit(i, string(d))
		}
		ctrl.SubmitOTP(ctx, ctrl.OTP())

		Expect(ctrl.State()).To(Equal(flow.StateAuthenticated))
		Expect(store.Snapshot()).To(Equal(map[string]string{
			session.KeyToken:     "tok1",
			session.KeyUserName:  "Asha",
			session.KeyUserPhone: "712345678",
		}))
		Expect(srv.Calls()[1].UserID).To(Equal("42"))
		Expect(srv.Calls()[1].Body).To(Equal(map[string]any{"otp": "135790"}))
	})

	It("rejects an empty OTP without a network call", func() {
		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")
		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))

		ctrl.SubmitOTP(ctx, "")

		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))
		Expect(notifier.Current()).To(Equal(toast.Message{Kind: toast.KindError, Text: flow.MsgMissingOTP, Visible: true}))
		Expect(srv.CallCount(apitest.EndpointVerifyOTP)).To(BeZero())
	})

	It("never calls the backend for blank identity input", func() {
		for _, in := range [][2]string{{"", "1"}, {"a", ""}, {" ", " "}} {
			ctrl.SubmitIdentity(ctx, in[0], in[1], "+255")
			Expect(ctrl.State()).To(Equal(flow.StateCollectingIdentity))
			Expect(notifier.Current().Text).To(Equal(flow.MsgMissingIdentity))
		}
		Expect(srv.Calls()).To(BeEmpty())
	})

	It("surfaces the server message on a rejected OTP", func() {
		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")
		ctrl.SubmitOTP(ctx, "000000")

		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))
		Expect(notifier.Current()).To(Equal(toast.Message{Kind: toast.KindError, Text: "Invalid OTP", Visible: true}))
		Expect(store.Snapshot()).To(BeEmpty())
	})

	It("shows the generic message when the error has no body", func() {
		srv.ScriptRequestOTP(apitest.Reply{Status: http.StatusInternalServerError})

		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")

		Expect(notifier.Current().Text).To(Equal(flow.MsgNetworkError))
		Expect(ctrl.Loading()).To(BeFalse())
	})

	It("issues a fresh user id after returning to identity entry", func() {
		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")
		first := ctrl.Snapshot().UserID

		ctrl.ReturnToIdentity()
		Expect(ctrl.State()).To(Equal(flow.StateCollectingIdentity))

		id := ctrl.Snapshot().Identity
		ctrl.SubmitIdentity(ctx, id.Name, id.Phone, id.DialCode)

		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))
		Expect(ctrl.Snapshot().UserID).NotTo(Equal(first))
	})

	It("keeps the user on OTP entry when the session cannot be saved", func() {
		store.FailOn(session.KeyUserName, context.DeadlineExceeded)
		ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")
		ctrl.SubmitOTP(ctx, apitest.ValidOTP)

		Expect(ctrl.State()).To(Equal(flow.StateAwaitingOTP))
		Expect(notifier.Current().Text).To(Equal(flow.MsgSaveFailed))
		Expect(store.Snapshot()).To(HaveKeyWithValue(session.KeyToken, "token-1"))
	})

	Describe("the next launch", func() {
		It("opens the app after a completed sign-in", func() {
			ctrl.SubmitIdentity(ctx, "Asha", "712345678", "+255")
			ctrl.SubmitOTP(ctx, apitest.ValidOTP)
			Expect(ctrl.State()).To(Equal(flow.StateAuthenticated))

			Expect(gate.New(sessions, nil).Resolve(ctx)).To(Equal(gate.RouteApp))
		})

		It("opens sign-in when the stored token is empty", func() {
			Expect(store.Set(ctx, session.KeyToken, "")).To(Succeed())

			Expect(gate.New(sessions, nil).Resolve(ctx)).To(Equal(gate.RouteAuth))
		})
	})
})
