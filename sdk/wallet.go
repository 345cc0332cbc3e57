package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/everFinance/invkeeper/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
)

// signing waits on the user approving the request in the wallet
const signTimeout = 5 * time.Minute

type signRequest struct {
	Transaction *schema.Transaction `json:"transaction"`
}

// WalletCli hands operation descriptors to an external wallet daemon, which owns keys,
// user approval and submission to the network.
type WalletCli struct {
	SCli *gentleman.Client
}

func NewWalletCli(walletUrl string) *WalletCli {
	return &WalletCli{
		SCli: gentleman.New().URL(walletUrl).Use(timeout.Request(signTimeout)),
	}
}

// SignAndExecute resolves with the transaction digest, or with an error wrapping
// schema.ErrSigner when the wallet declined or failed.
func (w *WalletCli) SignAndExecute(ctx context.Context, tx *schema.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := w.SCli.Post()
	req.Path("/sign_and_execute")
	req.JSON(signRequest{Transaction: tx})
	resp, err := req.Send()
	if err != nil {
		return "", err
	}
	defer resp.Close()
	body := resp.Bytes()
	if reason := gjson.GetBytes(body, "error").String(); reason != "" {
		return "", fmt.Errorf("%w: %s", schema.ErrSigner, reason)
	}
	if !resp.Ok {
		return "", fmt.Errorf("%w: http code: %d, errMsg: %s", schema.ErrSigner, resp.StatusCode, string(body))
	}
	digest := gjson.GetBytes(body, "digest").String()
	if digest == "" {
		return "", schema.ErrNullDigest
	}
	return digest, nil
}

// Account asks the wallet for the signed-in address.
func (w *WalletCli) Account(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := w.SCli.Get()
	req.Path("/account")
	resp, err := req.Send()
	if err != nil {
		return "", err
	}
	defer resp.Close()
	if !resp.Ok {
		return "", fmt.Errorf("resp failed; http code: %d, errMsg: %s", resp.StatusCode, resp.String())
	}
	return gjson.GetBytes(resp.Bytes(), "address").String(), nil
}
