package handheld

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpcreflect"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// HandheldServiceName is the fully-qualified name of the control service.
const HandheldServiceName = "basehaptic.handheld.v1.HandheldService"

// Procedure paths of the control service.
const (
	HandheldServicePublishGameProcedure   = "/basehaptic.handheld.v1.HandheldService/PublishGame"
	HandheldServiceGetGameProcedure       = "/basehaptic.handheld.v1.HandheldService/GetGame"
	HandheldServiceSetTeamProcedure       = "/basehaptic.handheld.v1.HandheldService/SetTeam"
	HandheldServicePublishHapticProcedure = "/basehaptic.handheld.v1.HandheldService/PublishHaptic"
)

// handheldServiceDescriptor describes the service with well-known message types only.
// It is registered globally so gRPC reflection can resolve it.
var handheldServiceDescriptor = registerHandheldService()

func registerHandheldService() protoreflect.ServiceDescriptor {
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(out),
		}
	}
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("basehaptic/handheld/v1/handheld.proto"),
		Package: proto.String("basehaptic.handheld.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("HandheldService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("PublishGame", ".google.protobuf.Struct", ".google.protobuf.BoolValue"),
				method("GetGame", ".google.protobuf.Empty", ".google.protobuf.Struct"),
				method("SetTeam", ".google.protobuf.StringValue", ".google.protobuf.StringValue"),
				method("PublishHaptic", ".google.protobuf.StringValue", ".google.protobuf.BoolValue"),
			},
		}},
	}

	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build handheld service descriptor: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register handheld service descriptor: %v", err))
	}
	return fd.Services().ByName("HandheldService")
}

// RPCService serves the control operations over Connect, gRPC and gRPC-Web.
// Request and response messages are protobuf well-known types.
type RPCService struct {
	service *Service
}

func NewRPCService(service *Service) *RPCService {
	return &RPCService{service: service}
}

// NewHandheldServiceHandler builds an HTTP handler for every procedure of the
// control service. It returns the path on which to mount the handler.
func NewHandheldServiceHandler(svc *RPCService, opts ...connect.HandlerOption) (string, http.Handler) {
	methods := handheldServiceDescriptor.Methods()
	publishGame := connect.NewUnaryHandler(
		HandheldServicePublishGameProcedure,
		svc.PublishGame,
		connect.WithSchema(methods.ByName("PublishGame")),
		connect.WithHandlerOptions(opts...),
	)
	getGame := connect.NewUnaryHandler(
		HandheldServiceGetGameProcedure,
		svc.GetGame,
		connect.WithSchema(methods.ByName("GetGame")),
		connect.WithIdempotency(connect.IdempotencyNoSideEffects),
		connect.WithHandlerOptions(opts...),
	)
	setTeam := connect.NewUnaryHandler(
		HandheldServiceSetTeamProcedure,
		svc.SetTeam,
		connect.WithSchema(methods.ByName("SetTeam")),
		connect.WithHandlerOptions(opts...),
	)
	publishHaptic := connect.NewUnaryHandler(
		HandheldServicePublishHapticProcedure,
		svc.PublishHaptic,
		connect.WithSchema(methods.ByName("PublishHaptic")),
		connect.WithHandlerOptions(opts...),
	)
	return "/" + HandheldServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case HandheldServicePublishGameProcedure:
			publishGame.ServeHTTP(w, r)
		case HandheldServiceGetGameProcedure:
			getGame.ServeHTTP(w, r)
		case HandheldServiceSetTeamProcedure:
			setTeam.ServeHTTP(w, r)
		case HandheldServicePublishHapticProcedure:
			publishHaptic.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// MountRPC registers the control service and gRPC reflection on mux.
func MountRPC(mux *http.ServeMux, svc *RPCService, opts ...connect.HandlerOption) {
	mux.Handle(NewHandheldServiceHandler(svc, opts...))

	reflector := grpcreflect.NewStaticReflector(HandheldServiceName)
	mux.Handle(grpcreflect.NewHandlerV1(reflector))
	mux.Handle(grpcreflect.NewHandlerV1Alpha(reflector))
}

// PublishGame takes a snapshot keyed like a game record.
func (s *RPCService) PublishGame(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[wrapperspb.BoolValue], error) {
	g := events.DecodeGame(events.DataMap(req.Msg.AsMap()))
	if !g.HasGame() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("game_id is required"))
	}
	if !s.service.PublishGame(g) {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("publish queue full"))
	}
	return connect.NewResponse(wrapperspb.Bool(true)), nil
}

func (s *RPCService) GetGame(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	g, ok := s.service.LastGame()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("no game published yet"))
	}
	msg, err := structpb.NewStruct(events.GameRecord(0, g).Data)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// SetTeam changes the followed team and answers with its canonical code.
func (s *RPCService) SetTeam(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[wrapperspb.StringValue], error) {
	team, queued, err := s.service.SetTeam(req.Msg.GetValue())
	if errors.Is(err, ErrUnknownTeam) {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !queued {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("publish queue full"))
	}
	return connect.NewResponse(wrapperspb.String(team)), nil
}

func (s *RPCService) PublishHaptic(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[wrapperspb.BoolValue], error) {
	eventType := models.ParseEventType(req.Msg.GetValue())
	if !eventType.IsKnown() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown event type %q", req.Msg.GetValue()))
	}
	if !s.service.PublishHaptic(eventType) {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("publish queue full"))
	}
	return connect.NewResponse(wrapperspb.Bool(true)), nil
}
