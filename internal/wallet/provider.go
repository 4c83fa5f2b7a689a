// Package wallet - клиент Ethereum JSON-RPC провайдера и вспомогательные
// функции для адресов и сумм.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/holiman/uint256"
)

// ErrNotConfigured возвращается, если адрес провайдера не задан.
var ErrNotConfigured = errors.New("wallet: провайдер не настроен")

// TransferGas - лимит газа для простого перевода ETH.
const TransferGas = "0x5208"

// RPCError - ошибка, которую вернул провайдер.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet: rpc ошибка %d: %s", e.Code, e.Message)
}

// TxRequest - параметры eth_sendTransaction.
type TxRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

// Receipt - интересующая нас часть eth_getTransactionReceipt.
type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
	BlockNumber     string `json:"blockNumber"`
}

// Succeeded сообщает, успешна ли транзакция (status 0x1).
func (r *Receipt) Succeeded() bool {
	return r.Status == "0x1"
}

// Provider реализует вызовы request({method, params}) поверх jrpc2 клиента
// с HTTP каналом.
type Provider struct {
	url    string
	client *jrpc2.Client
}

// NewProvider создаёт клиента. Пустой url даёт провайдер, который
// на каждый вызов возвращает ErrNotConfigured.
func NewProvider(url string) *Provider {
	p := &Provider{url: url}
	if url == "" {
		return p
	}
	ch := jhttp.NewChannel(url, &jhttp.ChannelOptions{
		Client: &http.Client{Timeout: 15 * time.Second},
	})
	p.client = jrpc2.NewClient(ch, nil)
	return p
}

// Configured сообщает, задан ли адрес провайдера.
func (p *Provider) Configured() bool {
	return p != nil && p.client != nil
}

// Close закрывает клиента.
func (p *Provider) Close() error {
	if !p.Configured() {
		return nil
	}
	return p.client.Close()
}

// Request выполняет произвольный JSON-RPC вызов и декодирует result в out.
func (p *Provider) Request(ctx context.Context, method string, params []any, out any) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if params == nil {
		params = []any{}
	}

	rsp, err := p.client.Call(ctx, method, params)
	if err != nil {
		var rpcErr *jrpc2.Error
		if errors.As(err, &rpcErr) {
			return &RPCError{Code: int(rpcErr.Code), Message: rpcErr.Message}
		}
		return fmt.Errorf("wallet: %s: %w", method, err)
	}
	if out == nil {
		return nil
	}
	if err := rsp.UnmarshalResult(out); err != nil {
		return fmt.Errorf("wallet: %s: разбор result: %w", method, err)
	}
	return nil
}

// Accounts возвращает уже разрешённые аккаунты (eth_accounts).
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.Request(ctx, "eth_accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts запрашивает доступ к аккаунтам (eth_requestAccounts).
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.Request(ctx, "eth_requestAccounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Balance возвращает баланс адреса в wei на последнем блоке.
func (p *Provider) Balance(ctx context.Context, address string) (*uint256.Int, error) {
	var hex string
	if err := p.Request(ctx, "eth_getBalance", []any{address, "latest"}, &hex); err != nil {
		return nil, err
	}
	return ParseQuantity(hex)
}

// SendTransaction отправляет перевод и возвращает хеш транзакции.
func (p *Provider) SendTransaction(ctx context.Context, tx TxRequest) (string, error) {
	if tx.Gas == "" {
		tx.Gas = TransferGas
	}
	var hash string
	if err := p.Request(ctx, "eth_sendTransaction", []any{tx}, &hash); err != nil {
		return "", err
	}
	if hash == "" {
		return "", fmt.Errorf("wallet: eth_sendTransaction: пустой хеш")
	}
	return hash, nil
}

// TransactionReceipt возвращает квитанцию или nil, если транзакция ещё не в блоке.
func (p *Provider) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var receipt *Receipt
	if err := p.Request(ctx, "eth_getTransactionReceipt", []any{hash}, &receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}
