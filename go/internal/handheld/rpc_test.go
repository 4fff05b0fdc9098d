package handheld

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"connectrpc.com/grpcreflect"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newRPCServer(t *testing.T, pub *fakePublisher) (*httptest.Server, *Service) {
	t.Helper()
	svc := NewService(pub, "SSG")
	mux := http.NewServeMux()
	MountRPC(mux, NewRPCService(svc))
	srv := httptest.NewUnstartedServer(mux)
	srv.EnableHTTP2 = true
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestRPCPublishAndGetGame(t *testing.T) {
	pub := &fakePublisher{}
	srv, _ := newRPCServer(t, pub)
	ctx := context.Background()

	getGame := connect.NewClient[emptypb.Empty, structpb.Struct](srv.Client(), srv.URL+HandheldServiceGetGameProcedure)
	if _, err := getGame.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})); connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not found before any publish, got %v", err)
	}

	snapshot, err := structpb.NewStruct(map[string]any{
		"game_id":    "g1",
		"home_team":  "SSG",
		"away_team":  "KIA",
		"home_score": 3,
		"inning":     "5회말",
		"base_first": true,
		"event_type": "hit",
	})
	if err != nil {
		t.Fatalf("build struct: %v", err)
	}
	publishGame := connect.NewClient[structpb.Struct, wrapperspb.BoolValue](srv.Client(), srv.URL+HandheldServicePublishGameProcedure)
	res, err := publishGame.CallUnary(ctx, connect.NewRequest(snapshot))
	if err != nil {
		t.Fatalf("publish game: %v", err)
	}
	if !res.Msg.GetValue() {
		t.Fatalf("expected publish to be queued")
	}
	games := pub.gamesSnapshot()
	if len(games) != 1 {
		t.Fatalf("expected one published game, got %d", len(games))
	}
	g := games[0]
	if g.GameID != "g1" || g.HomeScore != 3 || !g.Bases.First || g.EventType != models.EventTypeHit || g.MyTeam != "SSG" {
		t.Fatalf("unexpected game %+v", g)
	}

	got, err := getGame.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	fields := got.Msg.GetFields()
	if fields["game_id"].GetStringValue() != "g1" || fields["home_score"].GetNumberValue() != 3 || fields["my_team"].GetStringValue() != "SSG" {
		t.Fatalf("unexpected game struct %v", got.Msg)
	}
}

func TestRPCSetTeam(t *testing.T) {
	pub := &fakePublisher{}
	srv, svc := newRPCServer(t, pub)
	client := connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](srv.Client(), srv.URL+HandheldServiceSetTeamProcedure)

	res, err := client.CallUnary(context.Background(), connect.NewRequest(wrapperspb.String("lg")))
	if err != nil {
		t.Fatalf("set team: %v", err)
	}
	if res.Msg.GetValue() != "LG" || svc.Team() != "LG" {
		t.Fatalf("team = %q (service %q), want LG", res.Msg.GetValue(), svc.Team())
	}
	if themes := pub.themesSnapshot(); len(themes) != 1 || themes[0] != "LG" {
		t.Fatalf("expected LG theme publish, got %v", themes)
	}
}

func TestRPCErrors(t *testing.T) {
	tests := []struct {
		name   string
		reject bool
		call   func(ctx context.Context, srv *httptest.Server) error
		want   connect.Code
	}{
		{
			name: "unknown team",
			call: func(ctx context.Context, srv *httptest.Server) error {
				c := connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](srv.Client(), srv.URL+HandheldServiceSetTeamProcedure)
				_, err := c.CallUnary(ctx, connect.NewRequest(wrapperspb.String("nope")))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown event type",
			call: func(ctx context.Context, srv *httptest.Server) error {
				c := connect.NewClient[wrapperspb.StringValue, wrapperspb.BoolValue](srv.Client(), srv.URL+HandheldServicePublishHapticProcedure)
				_, err := c.CallUnary(ctx, connect.NewRequest(wrapperspb.String("DANCE")))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "game without id",
			call: func(ctx context.Context, srv *httptest.Server) error {
				c := connect.NewClient[structpb.Struct, wrapperspb.BoolValue](srv.Client(), srv.URL+HandheldServicePublishGameProcedure)
				_, err := c.CallUnary(ctx, connect.NewRequest(&structpb.Struct{}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name:   "haptic queue full",
			reject: true,
			call: func(ctx context.Context, srv *httptest.Server) error {
				c := connect.NewClient[wrapperspb.StringValue, wrapperspb.BoolValue](srv.Client(), srv.URL+HandheldServicePublishHapticProcedure)
				_, err := c.CallUnary(ctx, connect.NewRequest(wrapperspb.String("homerun")))
				return err
			},
			want: connect.CodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newRPCServer(t, &fakePublisher{reject: tt.reject})
			err := tt.call(context.Background(), srv)
			if got := connect.CodeOf(err); got != tt.want {
				t.Fatalf("code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestServiceDescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(HandheldServiceName)
	if err != nil {
		t.Fatalf("service not registered: %v", err)
	}
	sd, ok := d.(protoreflect.ServiceDescriptor)
	if !ok {
		t.Fatalf("expected a service descriptor, got %T", d)
	}
	if sd.Methods().Len() != 4 {
		t.Fatalf("expected 4 methods, got %d", sd.Methods().Len())
	}
	m := sd.Methods().ByName("PublishGame")
	if m == nil || m.Input().FullName() != "google.protobuf.Struct" {
		t.Fatalf("unexpected PublishGame method %v", m)
	}
}

func TestReflectionListsService(t *testing.T) {
	srv, _ := newRPCServer(t, &fakePublisher{})

	client := grpcreflect.NewClient(srv.Client(), srv.URL)
	stream := client.NewStream(context.Background())
	defer func() { _, _ = stream.Close() }()

	names, err := stream.ListServices()
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	found := false
	for _, n := range names {
		if n == HandheldServiceName {
			found = true
		}
	}
	if !found {
		t.Fatalf("reflection did not list %s: %v", HandheldServiceName, names)
	}
}
