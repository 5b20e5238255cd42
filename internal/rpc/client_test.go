package rpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region mock
type mockEngineService struct {
	EngineClient

	gradeResp *structpb.Struct
	gradeErr  error
	gradeReq  *structpb.Struct

	identityResp *structpb.Struct
	identityErr  error
}

func (m *mockEngineService) Grade(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	m.gradeReq = in
	return m.gradeResp, m.gradeErr
}

func (m *mockEngineService) Identity(_ context.Context, _ *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return m.identityResp, m.identityErr
}

// #endregion mock

// #region constructor-tests
func TestNewClientLazyDial(t *testing.T) {
	client, err := NewClient("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	defer client.Close()
}

func TestNewClientWithService(t *testing.T) {
	c := NewClientWithService(&mockEngineService{})
	if c == nil || c.client == nil {
		t.Fatal("expected client with injected service")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close without connection: %v", err)
	}
}

// #endregion constructor-tests

// #region grade-tests
func TestClientGrade_Success(t *testing.T) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"weapon_name": "Testbow",
		"mod_name":    "Critatis",
		"rerolls":     3,
		"grade":       "Good",
		"attributes": []interface{}{
			map[string]interface{}{"tag": "critical_chance", "positive": true, "value": 180.5, "quality": 0.75},
		},
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	mock := &mockEngineService{gradeResp: resp}
	c := NewClientWithService(mock)

	got, err := c.Grade(context.Background(), riven.Fingerprint{Compatibility: "/Lotus/Weapons/Testbow", Rerolls: 3})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if got.Grade != riven.GradeGood || got.Rerolls != 3 || got.Attributes[0].Value != 180.5 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if mock.gradeReq.Fields["compatibility"].GetStringValue() != "/Lotus/Weapons/Testbow" {
		t.Fatalf("request not encoded: %v", mock.gradeReq)
	}
}

func TestClientGrade_Error(t *testing.T) {
	c := NewClientWithService(&mockEngineService{gradeErr: errors.New("connection refused")})
	_, err := c.Grade(context.Background(), riven.Fingerprint{})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "grade rpc: connection refused" {
		t.Fatalf("unexpected error text %q", got)
	}
}

// #endregion grade-tests

// #region identity-tests
func TestClientIdentity_BadID(t *testing.T) {
	resp, _ := structpb.NewStruct(map[string]interface{}{"id": "not-a-uuid", "canonical": "riven|x"})
	c := NewClientWithService(&mockEngineService{identityResp: resp})
	if _, _, err := c.Identity(context.Background(), riven.StockRecord{}); err == nil {
		t.Fatal("expected parse error")
	}
}

// #endregion identity-tests
