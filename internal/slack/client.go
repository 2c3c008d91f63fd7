package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourtrade2023/inventory-aging-app/internal/errors"
)

// Per-step timeouts of the external upload handshake. The raw file POST
// gets longer because workbook payloads can be large.
const (
	apiTimeout    = 15 * time.Second
	uploadTimeout = 30 * time.Second
)

const defaultBaseURL = "https://slack.com/api"

// Client publishes a rendered report to a Slack channel. The external
// upload protocol is three steps — reserve an upload URL, POST the raw
// bytes, then complete the upload into the channel — but callers only
// see the single Publish capability.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	botToken   string
	channelID  string
}

// NewClient creates a Slack publisher for the given bot token and
// channel id.
func NewClient(logger *slog.Logger, botToken, channelID string) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		logger:     logger,
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		botToken:   strings.TrimSpace(botToken),
		channelID:  strings.TrimSpace(channelID),
	}
}

type uploadURLResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	UploadURL string `json:"upload_url"`
	FileID    string `json:"file_id"`
}

type completeUploadRequest struct {
	Files          []completeUploadFile `json:"files"`
	ChannelID      string               `json:"channel_id"`
	InitialComment string               `json:"initial_comment"`
}

type completeUploadFile struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type completeUploadResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Publish uploads the report bytes and shares them in the configured
// channel together with the summary comment. Transport failures are
// returned as an ok=false/message pair, never as a raised error: by the
// time Publish runs the analysis result is already complete and valid.
func (c *Client) Publish(ctx context.Context, content []byte, filename, comment string) (bool, string) {
	if !strings.HasPrefix(c.botToken, "xoxb-") {
		return false, "Bot Token が正しくありません。xoxb- で始まるトークンを設定してください"
	}
	if c.channelID == "" {
		return false, "チャンネルIDが未設定です"
	}

	c.logger.InfoContext(ctx, "publishing report to slack",
		slog.String("filename", filename),
		slog.Int("bytes", len(content)))

	uploadURL, fileID, err := c.getUploadURL(ctx, filename, len(content))
	if err != nil {
		c.logTransportFailure(ctx, "getUploadURL", err)
		return false, fmt.Sprintf("アップロードURL取得に失敗: %v", err)
	}
	if err := c.uploadFile(ctx, uploadURL, content); err != nil {
		c.logTransportFailure(ctx, "uploadFile", err)
		return false, fmt.Sprintf("ファイルアップロード失敗: %v", err)
	}
	if err := c.completeUpload(ctx, fileID, filename, comment); err != nil {
		c.logTransportFailure(ctx, "completeUpload", err)
		return false, fmt.Sprintf("ファイル共有に失敗: %v", err)
	}

	c.logger.InfoContext(ctx, "report published to slack",
		slog.String("file_id", fileID),
		slog.String("channel_id", c.channelID))

	return true, "Slack にExcelファイル + サマリを送信しました"
}

func (c *Client) logTransportFailure(ctx context.Context, step string, cause error) {
	err := errors.NewTransportError("slack upload handshake failed", cause).
		WithContext("step", step)
	c.logger.ErrorContext(ctx, "publish handshake step failed",
		slog.String("step", step),
		slog.String("error", err.Error()))
}

func (c *Client) getUploadURL(ctx context.Context, filename string, length int) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("filename", filename)
	params.Set("length", strconv.Itoa(length))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/files.getUploadURLExternal?"+params.Encode(), nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var body uploadURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	if !body.OK {
		return "", "", fmt.Errorf("slack API error (getUploadURL): %s", body.Error)
	}
	return body.UploadURL, body.FileID, nil
}

func (c *Client) uploadFile(ctx context.Context, uploadURL string, content []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}
	return nil
}

func (c *Client) completeUpload(ctx context.Context, fileID, filename, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	payload, err := json.Marshal(completeUploadRequest{
		Files:          []completeUploadFile{{ID: fileID, Title: filename}},
		ChannelID:      c.channelID,
		InitialComment: comment,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/files.completeUploadExternal", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body completeUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("slack API error (completeUpload): %s", body.Error)
	}
	return nil
}
