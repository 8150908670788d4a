package fuzz

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcserver "github.com/Billy-Davies-2/draft-assistant/internal/grpc"
)

func checkCode(t *testing.T, err error, input string) {
	t.Helper()
	if code := status.Code(err); code == codes.Internal || code == codes.Unknown {
		t.Errorf("unexpected %s for input %q: %v", code, input, err)
	}
}

// FuzzGRPCDraftPlayer fuzzes the DraftPlayer request fields
func FuzzGRPCDraftPlayer(f *testing.F) {
	f.Add("qb-001", true)
	f.Add("invalid", true)
	f.Add("", false)

	f.Fuzz(func(t *testing.T, playerID string, validSession bool) {
		manager, id := newSession(t)
		server := grpcserver.NewServer(manager, nil)
		if !validSession {
			id = "missing"
		}

		req, err := structpb.NewStruct(map[string]any{"sessionId": id, "playerId": playerID})
		if err != nil {
			t.Skip("not valid UTF-8")
		}
		_, err = server.DraftPlayer(context.Background(), req)
		checkCode(t, err, playerID)
	})
}

// FuzzGRPCListPlayers fuzzes arbitrary JSON requests to ListPlayers
func FuzzGRPCListPlayers(f *testing.F) {
	f.Add(`{"filter":{"position":["QB"],"availableOnly":true},"sort":"adp"}`)
	f.Add(`{"filter":{"tier":1.5}}`)
	f.Add(`{"filter":{"position":"QB"}}`)
	f.Add(`{"sort":"name"}`)

	f.Fuzz(func(t *testing.T, data string) {
		manager, id := newSession(t)
		server := grpcserver.NewServer(manager, nil)

		req := new(structpb.Struct)
		if err := protojson.Unmarshal([]byte(data), req); err != nil {
			t.Skip("not a JSON object")
		}
		if req.Fields == nil {
			req.Fields = make(map[string]*structpb.Value)
		}
		req.Fields["sessionId"] = structpb.NewStringValue(id)

		_, err := server.ListPlayers(context.Background(), req)
		checkCode(t, err, data)
	})
}

// FuzzGRPCCreateSession fuzzes team names
func FuzzGRPCCreateSession(f *testing.F) {
	f.Add("Team A", "Team B", "Team A")
	f.Add("", "", "")
	f.Add("A", "A", "C")

	f.Fuzz(func(t *testing.T, a, b, user string) {
		manager, _ := newSession(t)
		server := grpcserver.NewServer(manager, nil)

		req, err := structpb.NewStruct(map[string]any{"teams": []any{a, b}, "userTeam": user})
		if err != nil {
			t.Skip("not valid UTF-8")
		}
		_, err = server.CreateSession(context.Background(), req)
		checkCode(t, err, a+"|"+b+"|"+user)
	})
}
