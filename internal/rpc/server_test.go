// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/complex-gh/ethwallet"
	klog "github.com/complex-gh/ethwallet/internal/log"
	"github.com/matryer/is"
)

const (
	abandonAbout = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	goldenAddr   = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	goldenPriv   = "0x1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	svc, err := ethwallet.NewService(ethwallet.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return New("127.0.0.1:0", svc, cfg)
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v: %s", err, rr.Body.String())
	}
	return rr.Code, env
}

func TestServer_Restore(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	code, env := call(t, h, http.MethodPost, "/restore", `{"mnemonic":"`+abandonAbout+`","path":"m/44'/60'/0'/0/0"}`)
	is.Equal(code, http.StatusOK)
	is.True(env.Success)

	var rec ethwallet.WalletRecord
	is.NoErr(json.Unmarshal(env.Data, &rec))
	is.Equal(rec.Address, goldenAddr)
	is.Equal(rec.PrivateKey, goldenPriv)
	is.Equal(rec.Mnemonic, abandonAbout)
}

func TestServer_Generate(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	code, env := call(t, h, http.MethodPost, "/generate", `{"strength":256}`)
	is.Equal(code, http.StatusOK)
	var rec ethwallet.WalletRecord
	is.NoErr(json.Unmarshal(env.Data, &rec))
	is.Equal(len(strings.Fields(rec.Mnemonic)), 24)
	is.Equal(rec.Path, "m/44'/60'/0'/0/0")

	code, env = call(t, h, http.MethodPost, "/generate", `{"strength":100}`)
	is.Equal(code, http.StatusBadRequest)
	is.True(!env.Success)
	is.True(env.Error != "")
}

func TestServer_Derive(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	code, env := call(t, h, http.MethodPost, "/derive", `{"mnemonic":"`+abandonAbout+`","index":0}`)
	is.Equal(code, http.StatusOK)
	var rec ethwallet.WalletRecord
	is.NoErr(json.Unmarshal(env.Data, &rec))
	is.Equal(rec.Address, goldenAddr)
	is.Equal(*rec.Index, uint32(0))

	code, env = call(t, h, http.MethodPost, "/derive", `{"mnemonic":"`+abandonAbout+`","index":0,"count":3}`)
	is.Equal(code, http.StatusOK)
	var recs []ethwallet.WalletRecord
	is.NoErr(json.Unmarshal(env.Data, &recs))
	is.Equal(len(recs), 3)
	is.Equal(recs[0].Address, goldenAddr)
	is.Equal(recs[2].Path, "m/44'/60'/0'/0/2")
}

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     ethwallet.ValidationResult
	}{
		{abandonAbout, ethwallet.ValidationResult{Valid: true, WordCount: 12}},
		{"not a real mnemonic phrase at all foo bar baz qux", ethwallet.ValidationResult{WordCount: 10}},
	}
	h := newTestServer(t, Config{}).Handler()
	for _, tt := range tests {
		t.Run(tt.mnemonic, func(t *testing.T) {
			is := is.New(t)
			code, env := call(t, h, http.MethodPost, "/validate", `{"mnemonic":"`+tt.mnemonic+`"}`)
			is.Equal(code, http.StatusOK)
			is.True(env.Success)
			var got ethwallet.ValidationResult
			is.NoErr(json.Unmarshal(env.Data, &got))
			is.Equal(got, tt.want)
		})
	}
}

func TestServer_Address(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	code, env := call(t, h, http.MethodPost, "/address", `{"privateKey":"`+goldenPriv+`"}`)
	is.Equal(code, http.StatusOK)
	var info ethwallet.KeyInfo
	is.NoErr(json.Unmarshal(env.Data, &info))
	is.Equal(info.Address, goldenAddr)

	code, env = call(t, h, http.MethodPost, "/address", `{"privateKey":"0xzz"}`)
	is.Equal(code, http.StatusBadRequest)
	is.True(strings.Contains(env.Error, "invalid encoding"))
}

func TestServer_XPub(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	code, env := call(t, h, http.MethodPost, "/xpub", `{"mnemonic":"`+abandonAbout+`","account":0}`)
	is.Equal(code, http.StatusOK)
	var keys ethwallet.AccountKeys
	is.NoErr(json.Unmarshal(env.Data, &keys))
	is.True(strings.HasPrefix(keys.XPub, "xpub"))
}

func TestServer_Passphrase(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	_, env := call(t, h, http.MethodPost, "/restore", `{"mnemonic":"`+abandonAbout+`","passphrase":"TREZOR"}`)
	var rec ethwallet.WalletRecord
	is.NoErr(json.Unmarshal(env.Data, &rec))
	is.True(rec.Address != goldenAddr)
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad mnemonic", http.MethodPost, "/restore", `{"mnemonic":"abandon"}`, http.StatusBadRequest},
		{"bad path", http.MethodPost, "/restore", `{"mnemonic":"` + abandonAbout + `","path":"x"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/validate", `{"mnemonic":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/validate", `{"phrase":"x"}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/generate", ``, http.StatusMethodNotAllowed},
		{"unknown route", http.MethodPost, "/sign", `{}`, http.StatusNotFound},
		{"health wrong method", http.MethodPost, "/health", ``, http.StatusMethodNotAllowed},
	}
	h := newTestServer(t, Config{}).Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			code, env := call(t, h, tt.method, tt.path, tt.body)
			is.Equal(code, tt.status)
			is.True(!env.Success)
			is.True(env.Error != "")
		})
	}
}

func TestServer_BodyLimit(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{}).Handler()

	big := `{"mnemonic":"` + strings.Repeat("a", maxBodySize) + `"}`
	code, env := call(t, h, http.MethodPost, "/validate", big)
	is.Equal(code, http.StatusBadRequest)
	is.True(!env.Success)
}

func TestServer_Health(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{Timeout: time.Second}).Handler()
	code, env := call(t, h, http.MethodGet, "/health", "")
	is.Equal(code, http.StatusOK)
	is.True(env.Success)
}

func TestServer_CORS(t *testing.T) {
	is := is.New(t)
	h := newTestServer(t, Config{CORSOrigins: []string{"https://wallet.example"}}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/restore", nil)
	req.Header.Set("Origin", "https://wallet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	is.Equal(rr.Header().Get("Access-Control-Allow-Origin"), "https://wallet.example")

	req = httptest.NewRequest(http.MethodOptions, "/restore", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	is.Equal(rr.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestServer_StartStop(t *testing.T) {
	is := is.New(t)
	s := newTestServer(t, Config{Timeout: 5 * time.Second})
	is.NoErr(s.Start())
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	body := bytes.NewBufferString(`{"mnemonic":"` + abandonAbout + `"}`)
	resp, err := http.Post("http://"+s.Addr()+"/validate", "application/json", body)
	is.NoErr(err)
	defer resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), "application/json")

	raw, err := io.ReadAll(resp.Body)
	is.NoErr(err)
	is.True(strings.Contains(string(raw), `"valid":true`))
}

func TestServer_RequestLog(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	klog.InitWriter(&buf, "debug", true)
	t.Cleanup(func() { klog.Init("info", false) })

	h := newTestServer(t, Config{}).Handler()
	code, _ := call(t, h, http.MethodPost, "/validate", `{"mnemonic":"`+abandonAbout+`"}`)
	is.Equal(code, http.StatusOK)

	out := buf.String()
	is.True(strings.Contains(out, `"component":"rpc"`))
	is.True(strings.Contains(out, `"path":"/validate"`))
	is.True(!strings.Contains(out, "abandon"))
}
