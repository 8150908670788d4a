package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/draft-assistant/internal/session"
)

// EventSource is the bus WatchEvents streams from
type EventSource interface {
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}

// Server implements DraftServiceServer on top of the session manager
type Server struct {
	sessions *session.Manager
	events   EventSource
}

// NewServer creates a gRPC server. events may be nil, which disables WatchEvents.
func NewServer(sessions *session.Manager, events EventSource) *Server {
	return &Server{sessions: sessions, events: events}
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func decodeRequest(in *structpb.Struct, dest any) error {
	if err := fromStruct(in, dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func sessionID(in *structpb.Struct) (string, error) {
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return "", status.Error(codes.InvalidArgument, "sessionId is required")
	}
	return req.SessionID, nil
}

// toStatus maps domain errors to gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, dal.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, draft.ErrInvalidPick),
		errors.Is(err, draft.ErrDraftComplete),
		errors.Is(err, draft.ErrNothingToUndo):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrInvalidTeam):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.Error("gRPC: request failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}

func respond(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// CreateSession starts a draft
func (s *Server) CreateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		UserTeam string   `json:"userTeam"`
		Teams    []string `json:"teams"`
	}
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	logger.Info("gRPC: Creating session", "user_team", req.UserTeam, "teams", len(req.Teams))
	id, state, err := s.sessions.Create(req.UserTeam, req.Teams)
	return respond(map[string]any{"id": id, "state": state}, err)
}

// GetState returns the session snapshot
func (s *Server) GetState(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	logger.Debug("gRPC: Getting draft state", "session_id", id)
	return respond(s.sessions.State(id))
}

// DraftPlayer fills the current pick
func (s *Server) DraftPlayer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		SessionID string `json:"sessionId"`
		PlayerID  string `json:"playerId"`
	}
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" || req.PlayerID == "" {
		return nil, status.Error(codes.InvalidArgument, "sessionId and playerId are required")
	}

	logger.Info("gRPC: Drafting player", "session_id", req.SessionID, "player_id", req.PlayerID)
	state, pick, err := s.sessions.DraftPlayer(req.SessionID, req.PlayerID)
	return respond(map[string]any{"pick": pick, "state": state}, err)
}

// UndoPick reopens the most recent pick
func (s *Server) UndoPick(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	return respond(s.sessions.Undo(id))
}

// ResetDraft restores a fresh board
func (s *Server) ResetDraft(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC: Resetting draft", "session_id", id)
	return respond(s.sessions.Reset(id))
}

// GetAdvice returns recommendations for the user team
func (s *Server) GetAdvice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	return respond(s.sessions.Advice(ctx, id))
}

// ListPlayers returns the filtered and sorted players under "players"
func (s *Server) ListPlayers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		SessionID string             `json:"sessionId"`
		Filter    models.FilterState `json:"filter"`
		Sort      string             `json:"sort"`
	}
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "sessionId is required")
	}
	for _, pos := range req.Filter.Positions {
		if !pos.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown position %q", pos)
		}
	}
	sortKey, err := models.ParseSortKey(req.Sort)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	players, err := s.sessions.Players(req.SessionID, req.Filter, sortKey)
	return respond(map[string]any{"players": players}, err)
}

// WatchEvents streams bus events, optionally limited to one session
func (s *Server) WatchEvents(in *structpb.Struct, stream grpc.ServerStream) error {
	if s.events == nil {
		return status.Error(codes.Unavailable, "event stream is not configured")
	}
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return err
	}

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)
	logger.Debug("gRPC: Event watcher connected", "session_id", req.SessionID)

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if req.SessionID != "" && event.SessionID != "" && event.SessionID != req.SessionID {
				continue
			}
			msg, err := toStruct(event)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}
