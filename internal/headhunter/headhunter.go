package headhunter

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "kruglovb/ai-interviewer (kruglovb@gmail.com)"
	// Max value for search per page.
	perPage = "50"
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// SearchResumes runs an employer-side resume search over all result
// pages.
func (c *Client) SearchResumes(params *ResumeSearchParams) (*Resumes, error) {
	return c.searchResumes(params)
}
