package rpc

import (
	"context"
	"database/sql"
	"io"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/decode"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/identity"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/metrics"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region harness
type harness struct {
	client  *Client
	db      *sql.DB
	metrics *metrics.Metrics
}

func startServer(t *testing.T) harness {
	t.Helper()

	snap, err := catalog.LoadYAML("../catalog/testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := logging.EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	m, err := metrics.New(nil)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterEngineServer(srv, NewServer(catalog.NewHolder(snap), grade.DefaultCostTable(), db, m, zerolog.New(io.Discard)))
	go srv.Serve(lis)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		srv.Stop()
		db.Close()
	})
	return harness{client: client, db: db, metrics: m}
}

func decisiveFingerprint() riven.Fingerprint {
	return riven.Fingerprint{
		Compatibility: "/Lotus/Weapons/Testbow",
		MasteryRank:   14,
		ModRank:       8,
		Rerolls:       3,
		Polarity:      "madurai",
		Buffs: []riven.AttributeEntry{
			{Tag: "critical_chance", RolledValue: 170, IsPositive: true},
			{Tag: "critical_damage", RolledValue: 140, IsPositive: true},
		},
		Curses: []riven.AttributeEntry{
			{Tag: "zoom", RolledValue: -25, IsPositive: false},
		},
	}
}

// #endregion harness

// #region grade-tests
func TestGradeRoundTrip(t *testing.T) {
	h := startServer(t)

	got, err := h.client.Grade(context.Background(), decisiveFingerprint())
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if got.Grade != riven.GradeDecisive || got.ModName != "Critatis" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.Attributes) != 3 || got.Attributes[0].Quality < 0 || got.Attributes[0].Quality > 1 {
		t.Fatalf("unexpected attributes: %+v", got.Attributes)
	}

	entries, err := logging.ListGrades(h.db, 10)
	if err != nil {
		t.Fatalf("ListGrades: %v", err)
	}
	if len(entries) != 1 || entries[0].Grade != "Decisive" || entries[0].CatalogVersion != "fixture-1" {
		t.Fatalf("unexpected grade log: %+v", entries)
	}
	if v := testutil.ToFloat64(h.metrics.Grades.WithLabelValues("Decisive")); v != 1 {
		t.Fatalf("expected one Decisive observation, got %v", v)
	}
}

func TestGradeErrorCodes(t *testing.T) {
	h := startServer(t)

	missing := decisiveFingerprint()
	missing.Compatibility = "/Lotus/Weapons/Missing"

	badShape := decisiveFingerprint()
	badShape.Buffs = badShape.Buffs[:1]

	unknownStat := decisiveFingerprint()
	unknownStat.Buffs[1].Tag = "slash_damage"

	badRank := decisiveFingerprint()
	badRank.ModRank = 11

	cases := []struct {
		name string
		fp   riven.Fingerprint
		want codes.Code
	}{
		{"weapon not found", missing, codes.NotFound},
		{"unsupported shape", badShape, codes.InvalidArgument},
		{"unknown stat", unknownStat, codes.FailedPrecondition},
		{"invalid rank", badRank, codes.InvalidArgument},
	}
	for _, c := range cases {
		_, err := h.client.Grade(context.Background(), c.fp)
		if got := status.Code(err); got != c.want {
			t.Errorf("%s: expected %s, got %s (%v)", c.name, c.want, got, err)
		}
	}

	entries, err := logging.ListGrades(h.db, 0)
	if err != nil {
		t.Fatalf("ListGrades: %v", err)
	}
	if len(entries) != len(cases) || entries[0].ErrorKind != metrics.KindWeaponNotFound {
		t.Fatalf("expected failures in grade log, got %+v", entries)
	}
	if v := testutil.ToFloat64(h.metrics.EngineErrors.WithLabelValues(metrics.KindUnknownStat)); v != 1 {
		t.Fatalf("expected one unknown_stat error, got %v", v)
	}
}

func TestGradeUndecodableRequest(t *testing.T) {
	h := startServer(t)
	in, err := structpb.NewStruct(map[string]interface{}{"mod_rank": "eight"})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}

	_, err = h.client.client.Grade(context.Background(), in)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if v := testutil.ToFloat64(h.metrics.EngineErrors.WithLabelValues(metrics.KindInvalidArgument)); v != 1 {
		t.Fatalf("expected one invalid_argument error, got %v", v)
	}
}

// #endregion grade-tests

// #region other-method-tests
func TestIdentityRoundTrip(t *testing.T) {
	h := startServer(t)
	rank := 8
	rec := riven.StockRecord{
		WeaponURLName: "testbow",
		ModName:       "Critatis",
		Rerolls:       3,
		MasteryRank:   14,
		ModRank:       &rank,
		Polarity:      "madurai",
		Attributes: []riven.StockAttribute{
			{URLName: "critical_damage", Positive: true, Value: 140},
			{URLName: "critical_chance", Positive: true, Value: 170},
		},
	}

	id, canonical, err := h.client.Identity(context.Background(), rec)
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id != identity.Of(rec) {
		t.Fatalf("remote identity %s differs from local %s", id, identity.Of(rec))
	}
	if canonical != identity.Canonical(rec) {
		t.Fatalf("canonical mismatch: %s", canonical)
	}
}

func TestEncodeQueryRoundTrip(t *testing.T) {
	h := startServer(t)
	enabled, empty := true, ""
	c := query.MatchCriteria{
		Enabled:  &enabled,
		Polarity: &empty,
		Attributes: []query.CriteriaAttribute{
			{URLName: "critical_chance", Positive: true, IsRequired: true},
		},
	}

	got, err := h.client.EncodeQuery(context.Background(), c)
	if err != nil {
		t.Fatalf("EncodeQuery: %v", err)
	}
	if got.Encoded != "positive_stats=critical_chance&polarity=any" {
		t.Fatalf("unexpected encoding %q", got.Encoded)
	}
	if got.Query.Polarity == nil || *got.Query.Polarity != query.AnyPolarity {
		t.Fatalf("unexpected query %+v", got.Query)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	h := startServer(t)

	got, err := h.client.Project(context.Background(), decisiveFingerprint())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got.Riven.Grade != riven.GradeDecisive {
		t.Fatalf("unexpected riven: %+v", got.Riven)
	}
	if len(got.Variants) != 2 || got.Variants[1].Name != "Testbow Prime" {
		t.Fatalf("expected base and prime projections, got %+v", got.Variants)
	}
	for rank := 0; rank <= decode.MaxRank; rank++ {
		if len(got.Variants[0].Ranks[rank]) != 3 {
			t.Fatalf("rank %d: expected 3 attributes", rank)
		}
	}

	entries, err := logging.ListGrades(h.db, 0)
	if err != nil {
		t.Fatalf("ListGrades: %v", err)
	}
	if len(entries) != 1 || entries[0].Grade != "Decisive" || entries[0].ModName != "Critatis" {
		t.Fatalf("expected projected grade in the log, got %+v", entries)
	}
	if v := testutil.ToFloat64(h.metrics.Grades.WithLabelValues("Decisive")); v != 1 {
		t.Fatalf("expected one Decisive observation, got %v", v)
	}
}

func TestProjectWeaponNotFound(t *testing.T) {
	h := startServer(t)
	fp := decisiveFingerprint()
	fp.Compatibility = "/Lotus/Weapons/Missing"
	if _, err := h.client.Project(context.Background(), fp); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	entries, err := logging.ListGrades(h.db, 0)
	if err != nil {
		t.Fatalf("ListGrades: %v", err)
	}
	if len(entries) != 1 || entries[0].ErrorKind != metrics.KindWeaponNotFound {
		t.Fatalf("expected failed projection in the log, got %+v", entries)
	}
	if v := testutil.ToFloat64(h.metrics.EngineErrors.WithLabelValues(metrics.KindWeaponNotFound)); v != 1 {
		t.Fatalf("expected one weapon_not_found observation, got %v", v)
	}
}

// #endregion other-method-tests
