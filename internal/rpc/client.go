package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region client-struct
// Client wraps the gRPC connection to a rivend daemon.
type Client struct {
	conn   *grpc.ClientConn
	client EngineClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to the engine at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewEngineClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc EngineClient) *Client {
	return &Client{client: svc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region grade
// Grade grades a fingerprint remotely.
func (c *Client) Grade(ctx context.Context, fp riven.Fingerprint) (riven.GradedRiven, error) {
	in, err := toStruct(fp)
	if err != nil {
		return riven.GradedRiven{}, err
	}
	resp, err := c.client.Grade(ctx, in)
	if err != nil {
		return riven.GradedRiven{}, fmt.Errorf("grade rpc: %w", err)
	}
	var out riven.GradedRiven
	if err := fromStruct(resp, &out); err != nil {
		return riven.GradedRiven{}, err
	}
	return out, nil
}

// #endregion grade

// #region identity
// Identity returns a stock record's identity and canonical string.
func (c *Client) Identity(ctx context.Context, rec riven.StockRecord) (uuid.UUID, string, error) {
	in, err := toStruct(rec)
	if err != nil {
		return uuid.Nil, "", err
	}
	resp, err := c.client.Identity(ctx, in)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("identity rpc: %w", err)
	}
	var out IdentityResponse
	if err := fromStruct(resp, &out); err != nil {
		return uuid.Nil, "", err
	}
	id, err := uuid.Parse(out.ID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("parse identity: %w", err)
	}
	return id, out.Canonical, nil
}

// #endregion identity

// #region encode-query
// EncodeQuery encodes match criteria remotely.
func (c *Client) EncodeQuery(ctx context.Context, criteria query.MatchCriteria) (EncodeQueryResponse, error) {
	in, err := toStruct(criteria)
	if err != nil {
		return EncodeQueryResponse{}, err
	}
	resp, err := c.client.EncodeQuery(ctx, in)
	if err != nil {
		return EncodeQueryResponse{}, fmt.Errorf("encode query rpc: %w", err)
	}
	var out EncodeQueryResponse
	if err := fromStruct(resp, &out); err != nil {
		return EncodeQueryResponse{}, err
	}
	return out, nil
}

// #endregion encode-query

// #region project
// Project grades a fingerprint and returns its rank/variant projection.
func (c *Client) Project(ctx context.Context, fp riven.Fingerprint) (ProjectResponse, error) {
	in, err := toStruct(fp)
	if err != nil {
		return ProjectResponse{}, err
	}
	resp, err := c.client.Project(ctx, in)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("project rpc: %w", err)
	}
	var out ProjectResponse
	if err := fromStruct(resp, &out); err != nil {
		return ProjectResponse{}, err
	}
	return out, nil
}

// #endregion project
