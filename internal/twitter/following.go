package twitter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
)

// followingResponse is one page of the /2/users/:id/following endpoint.
type followingResponse struct {
	Data []domain.FollowRelation `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []apiError `json:"errors"`
}

// FetchFollowing returns the complete list of accounts the given user
// follows, transparently walking pagination. A zero result count on the
// first page short-circuits: the user follows nobody.
func (c *Client) FetchFollowing(ctx context.Context, accountID string) ([]domain.FollowRelation, error) {
	var relations []domain.FollowRelation
	token := ""

	for {
		page, err := c.followingPage(ctx, accountID, token)
		if err != nil {
			return nil, err
		}
		if len(relations) == 0 && page.Meta.ResultCount == 0 {
			return []domain.FollowRelation{}, nil
		}
		relations = append(relations, page.Data...)

		if page.Meta.NextToken == "" {
			return relations, nil
		}
		token = page.Meta.NextToken
	}
}

// followingPage fetches a single page under the following-lookup quota.
func (c *Client) followingPage(ctx context.Context, accountID, paginationToken string) (followingResponse, error) {
	var resp followingResponse

	endpoint := fmt.Sprintf("%s/2/users/%s/following?max_results=%d", c.baseURL, accountID, followingPageLimit)
	if paginationToken != "" {
		endpoint += "&pagination_token=" + url.QueryEscape(paginationToken)
	}

	if err := c.getJSON(ctx, c.quotas.FollowingLookup, endpoint, &resp); err != nil {
		return resp, fmt.Errorf("fetch following of %s: %w", accountID, err)
	}
	if len(resp.Errors) > 0 {
		return resp, fmt.Errorf("fetch following of %s: %s", accountID, resp.Errors[0].Message)
	}
	return resp, nil
}
