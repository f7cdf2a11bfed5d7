package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// Server adapts a Service to LadderServer.
type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server { return &Server{svc: svc} }

var _ LadderServer = (*Server)(nil)

func (s *Server) Expected(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := QueryFromStruct(in)
	if err != nil {
		return nil, toStatus(err)
	}
	games, err := s.svc.Expected(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return gamesStruct(q, games)
}

func (s *Server) NoProtection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := QueryFromStruct(in)
	if err != nil {
		return nil, toStatus(err)
	}
	games, err := s.svc.NoProtection(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return gamesStruct(q, games)
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := QueryFromStruct(in)
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := s.svc.Simulate(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	out := baseFields(q)
	out["games"] = st.Mean
	out["trials"] = st.Trials
	out["var"] = st.Var
	out["std_dev"] = st.StdDev
	out["std_err"] = st.StdErr
	out["p50"] = st.P50
	out["p90"] = st.P90
	out["p99"] = st.P99
	return newStruct(out)
}

func baseFields(q Query) map[string]any {
	return map[string]any{
		"p":      q.P,
		"rank":   q.Rank.String(),
		"next":   q.Rank.Next(),
		"mode":   string(q.Mode),
		"format": q.Format.String(),
	}
}

func gamesStruct(q Query, games float64) (*structpb.Struct, error) {
	out := baseFields(q)
	out["games"] = games
	return newStruct(out)
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// toStatus maps core errors to gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ladder.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
