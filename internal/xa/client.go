package xa

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dtm-labs/client/dtmcli"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

// Client abre transações XA globais no DTM com uma branch no tpccd
type Client struct {
	server  string
	baseURL string
}

// NewClient cria um cliente para o servidor DTM e o endereço base do tpccd
func NewClient(server, baseURL string) *Client {
	return &Client{server: server, baseURL: strings.TrimRight(baseURL, "/")}
}

// BranchURL returns the participant endpoint for kind.
func (c *Client) BranchURL(kind tpcc.TxKind) string {
	return c.baseURL + "/api/xa/" + string(kind)
}

// NewOrder executa New-Order como transação XA global e devolve o GID
func (c *Client) NewOrder(ctx context.Context, req tpcc.NewOrderRequest) (string, error) {
	return c.run(ctx, tpcc.TxNewOrder, &req)
}

// Payment executa Payment como transação XA global e devolve o GID
func (c *Client) Payment(ctx context.Context, req tpcc.PaymentRequest) (string, error) {
	return c.run(ctx, tpcc.TxPayment, &req)
}

func (c *Client) run(ctx context.Context, kind tpcc.TxKind, payload any) (string, error) {
	ctx, span := otel.Tracer("tpcc-xa").Start(ctx, "xa.global."+string(kind))
	defer span.End()

	gid, err := genGid(c.server)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gid generation failed")
		return "", err
	}
	span.SetAttributes(attribute.String("xa.gid", gid))

	headers := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	err = dtmcli.XaGlobalTransaction2(c.server, gid, func(xa *dtmcli.Xa) {
		// Propaga o trace context para a branch
		xa.BranchHeaders = headers
	}, func(xa *dtmcli.Xa) (*resty.Response, error) {
		resp, err := xa.CallBranch(payload, c.BranchURL(kind))
		if err != nil {
			span.AddEvent(string(kind) + " XA branch failed")
			return resp, fmt.Errorf("%s XA branch failed: %w", kind, err)
		}
		span.AddEvent(string(kind) + " XA branch prepared")
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "XA transaction failed")
		log.Printf("❌ XA TRANSACTION FAILED | GID: %s | Error: %v", gid, err)
		return gid, fmt.Errorf("XA transaction failed: %w", err)
	}

	span.SetStatus(codes.Ok, "XA transaction committed")
	return gid, nil
}

// genGid converte o panic de dtmcli.MustGenGid (DTM indisponível) em erro
func genGid(server string) (gid string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gen gid: dtm unavailable at %s: %v", server, r)
		}
	}()

	gid = dtmcli.MustGenGid(server)
	if gid == "" {
		return "", fmt.Errorf("gen gid: empty gid from %s", server)
	}
	return gid, nil
}
