package rpc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/decode"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/identity"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/metrics"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region server
// Server implements EngineServer over the published catalog snapshot.
type Server struct {
	holder   *catalog.Holder
	costs    grade.CostTable
	gradeLog *sql.DB          // optional
	metrics  *metrics.Metrics // optional
	logger   zerolog.Logger
}

var _ EngineServer = (*Server)(nil)

// NewServer wires a server. gradeLog and m may be nil.
func NewServer(holder *catalog.Holder, costs grade.CostTable, gradeLog *sql.DB, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		holder:   holder,
		costs:    costs,
		gradeLog: gradeLog,
		metrics:  m,
		logger:   logger.With().Str(logging.SERVICE, ServiceName).Logger(),
	}
}

// #endregion server

// #region grade
// Grade grades one fingerprint and records the outcome in the grade log.
func (s *Server) Grade(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var fp riven.Fingerprint
	if err := fromStruct(in, &fp); err != nil {
		return nil, s.badRequest(err)
	}

	snap := s.holder.Load()
	res, err := grade.NewGrader(snap, s.costs).Grade(fp)
	s.record(snap.Version(), fp, res, err)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *Server) record(version string, fp riven.Fingerprint, res riven.GradedRiven, err error) {
	entry := logging.GradeEntry{
		CatalogVersion: version,
		WeaponID:       fp.Compatibility,
	}
	if err != nil {
		entry.ErrorKind = metrics.ErrorKind(err)
		entry.Error = err.Error()
		s.logger.Warn().Err(err).Str(logging.WEAPON, fp.Compatibility).Str(logging.CODE, entry.ErrorKind).Msg("grade failed")
		if s.metrics != nil {
			s.metrics.ObserveError(err)
		}
	} else {
		entry.ModName = res.ModName
		entry.Grade = string(res.Grade)
		s.logger.Debug().Str(logging.WEAPON, res.WeaponID).Str(logging.GRADE, entry.Grade).Msg("graded")
		if s.metrics != nil {
			s.metrics.ObserveGrade(res.Grade)
		}
	}

	if s.gradeLog == nil {
		return
	}
	body, merr := json.Marshal(fp)
	if merr != nil {
		s.logger.Error().Err(merr).Msg("marshal fingerprint for grade log")
		return
	}
	entry.FingerprintJSON = string(body)
	if lerr := logging.LogGrade(s.gradeLog, entry); lerr != nil {
		s.logger.Error().Err(lerr).Msg("grade log write failed")
	}
}

// #endregion grade

// #region identity
// Identity returns the content identity of a stock record.
func (s *Server) Identity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var rec riven.StockRecord
	if err := fromStruct(in, &rec); err != nil {
		return nil, s.badRequest(err)
	}
	return toStruct(IdentityResponse{
		ID:        identity.Of(rec).String(),
		Canonical: identity.Canonical(rec),
	})
}

// #endregion identity

// #region encode-query
// EncodeQuery projects match criteria onto marketplace search parameters.
func (s *Server) EncodeQuery(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var c query.MatchCriteria
	if err := fromStruct(in, &c); err != nil {
		return nil, s.badRequest(err)
	}
	q := query.Encode(c)
	return toStruct(EncodeQueryResponse{Query: q, Encoded: q.Encode()})
}

// #endregion encode-query

// #region project
// Project grades a fingerprint and renders it across ranks and shared-pool
// variants. The grade is recorded like a Grade call.
func (s *Server) Project(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var fp riven.Fingerprint
	if err := fromStruct(in, &fp); err != nil {
		return nil, s.badRequest(err)
	}

	snap := s.holder.Load()
	res, err := grade.NewGrader(snap, s.costs).Grade(fp)
	s.record(snap.Version(), fp, res, err)
	if err != nil {
		return nil, toStatus(err)
	}
	weapon, _ := snap.LookupWeapon(res.WeaponID)
	return toStruct(ProjectResponse{
		Riven:    res,
		Variants: decode.Project(res.Attributes, weapon, weapon.Variants),
	})
}

// #endregion project

// #region status
// badRequest counts an undecodable request and wraps it as InvalidArgument.
func (s *Server) badRequest(err error) error {
	if s.metrics != nil {
		s.metrics.EngineErrors.WithLabelValues(metrics.KindInvalidArgument).Inc()
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

// toStatus maps engine errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, grade.ErrWeaponNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, decode.ErrUnknownStat):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, decode.ErrUnsupportedShape), errors.Is(err, decode.ErrInvalidRank):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion status
