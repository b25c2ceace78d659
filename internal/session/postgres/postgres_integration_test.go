// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/session/postgres"
)

func TestPostgresSessionStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Postgres Session Store Suite")
}

var (
	container *tcpostgres.PostgresContainer
	connStr   string
)

var _ = BeforeSuite(func() {
	ctx := context.Background()
	var err error
	container, err = tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("phoneauth_test"),
		tcpostgres.WithUsername("phoneauth"),
		tcpostgres.WithPassword("phoneauth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	connStr, err = container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if container != nil {
		Expect(container.Terminate(context.Background())).To(Succeed())
	}
})

var _ = Describe("Session store on PostgreSQL", Ordered, func() {
	It("reports the schema as missing before migrating", func(ctx SpecContext) {
		store, err := postgres.Open(ctx, connStr, "")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, _, err = store.Get(ctx, session.KeyToken)
		Expect(err).To(MatchError(ContainSubstring("session_values")))
	})

	It("applies migrations", func() {
		m, err := postgres.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { Expect(m.Close()).To(Succeed()) }()

		Expect(m.Up()).To(Succeed())
		pending, err := m.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())

		version, dirty, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(BeNumerically(">", 0))
	})

	It("saves and loads a session through the manager", func(ctx SpecContext) {
		store, err := postgres.Open(ctx, connStr, "kiosk-1")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		mgr, err := session.NewManager(store)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.Init(ctx)).To(Succeed())

		want := session.Session{Token: "tok-abc", UserName: "Asha", UserPhone: "712345678"}
		Expect(mgr.Save(ctx, want)).To(Succeed())
		Expect(mgr.Save(ctx, want)).To(Succeed())

		got, ok, err := mgr.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(want))
	})

	It("isolates profiles", func(ctx SpecContext) {
		store, err := postgres.Open(ctx, connStr, "kiosk-2")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, found, err := store.Get(ctx, session.KeyToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("clears a session", func(ctx SpecContext) {
		store, err := postgres.Open(ctx, connStr, "kiosk-1")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		mgr, err := session.NewManager(store)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.Init(ctx)).To(Succeed())
		Expect(mgr.Clear(ctx)).To(Succeed())

		_, ok, err := mgr.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
