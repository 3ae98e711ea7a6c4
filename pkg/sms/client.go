// Package sms 는 알리고 호환 문자 게이트웨이 클라이언트다.
//
// 단문은 form-urlencoded, 이미지 문자는 multipart 로 같은 엔드포인트에 POST 한다.
// 응답의 result_code 가 "1" 일 때만 성공이다.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
)

var (
	ErrUnknownSender    = errors.New("sms: 등록되지 않은 발신번호 구분")
	ErrReceiverRequired = errors.New("sms: 수신번호가 비어 있습니다")
	ErrBodyRequired     = errors.New("sms: 메시지 본문이 비어 있습니다")
)

const defaultImageName = "report.png"

// Client 문자 발송 인터페이스
type Client interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// Config 게이트웨이 설정
type Config struct {
	BaseURL  string
	APIKey   string
	UserID   string
	Senders  map[string]string
	TestMode bool
	Timeout  time.Duration
}

// ConfigFrom 애플리케이션 설정에서 변환
func ConfigFrom(cfg *config.SMSConfig) Config {
	return Config{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		UserID:   cfg.UserID,
		Senders:  cfg.Senders,
		TestMode: cfg.TestMode,
		Timeout:  cfg.Timeout,
	}
}

// Message 한 수신자에게 보내는 문자
// Image 가 있으면 MMS 로 보낸다
type Message struct {
	Sender    string // main | sub | personal
	Receiver  string
	Body      string
	Title     string
	Image     []byte
	ImageName string
}

// Result 게이트웨이 응답
type Result struct {
	Code         flexString `json:"result_code"`
	Message      string     `json:"message"`
	MsgID        flexString `json:"msg_id"`
	SuccessCount int        `json:"success_cnt"`
	ErrorCount   int        `json:"error_cnt"`
	MsgType      string     `json:"msg_type"`
}

// OK result_code == "1"
func (r *Result) OK() bool {
	return r != nil && string(r.Code) == "1"
}

// ResultError 게이트웨이가 실패 코드를 돌려준 경우
type ResultError struct {
	Code    string
	Message string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("sms: 발송 실패 (result_code=%s): %s", e.Code, e.Message)
}

// HTTPError 2xx 가 아닌 HTTP 응답
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("sms: http %d: %s", e.StatusCode, body)
}

type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New 게이트웨이 클라이언트 생성
func New(cfg Config, logger *zap.Logger) (Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("sms: base_url 이 필요합니다")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(zap.String("client", "sms")),
	}, nil
}

// NormalizePhone 하이픈과 공백 제거
func NormalizePhone(phone string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(phone))
}

func (c *client) Send(ctx context.Context, msg Message) (*Result, error) {
	sender, ok := c.cfg.Senders[msg.Sender]
	if !ok || sender == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSender, msg.Sender)
	}
	receiver := NormalizePhone(msg.Receiver)
	if receiver == "" {
		return nil, ErrReceiverRequired
	}
	if strings.TrimSpace(msg.Body) == "" {
		return nil, ErrBodyRequired
	}

	fields := url.Values{}
	fields.Set("key", c.cfg.APIKey)
	fields.Set("user_id", c.cfg.UserID)
	fields.Set("sender", sender)
	fields.Set("receiver", receiver)
	fields.Set("msg", msg.Body)
	if msg.Title != "" {
		fields.Set("title", msg.Title)
	}
	fields.Set("testmode_yn", yn(c.cfg.TestMode))

	var (
		body        io.Reader
		contentType string
	)
	if len(msg.Image) > 0 {
		fields.Set("msg_type", "MMS")
		buf, ct, err := multipartBody(fields, msg)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	} else {
		body, contentType = strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, body)
	if err != nil {
		return nil, fmt.Errorf("sms: 요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms: 요청 실패: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("sms: 응답 읽기 실패: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("sms: 응답 해석 실패: %w", err)
	}
	if !result.OK() {
		c.logger.Warn("문자 발송 실패",
			zap.String("receiver", receiver),
			zap.String("result_code", string(result.Code)),
			zap.String("message", result.Message),
		)
		return &result, &ResultError{Code: string(result.Code), Message: result.Message}
	}

	c.logger.Debug("문자 발송 성공",
		zap.String("receiver", receiver),
		zap.String("msg_id", string(result.MsgID)),
		zap.String("msg_type", result.MsgType),
	)
	return &result, nil
}

func multipartBody(fields url.Values, msg Message) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("sms: multipart 필드 작성 실패: %w", err)
			}
		}
	}

	name := msg.ImageName
	if name == "" {
		name = defaultImageName
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, name))
	h.Set("Content-Type", http.DetectContentType(msg.Image))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("sms: 이미지 파트 생성 실패: %w", err)
	}
	if _, err := part.Write(msg.Image); err != nil {
		return nil, "", fmt.Errorf("sms: 이미지 쓰기 실패: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("sms: multipart 종료 실패: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// flexString 문자열과 숫자를 모두 받는 JSON 값
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
