package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
)

const orderSearchQuery = `
query ($query: String!) {
  orders(first: 25, query: $query, sortKey: CREATED_AT, reverse: true) {
    edges {
      node {
        id
        name
        email
        createdAt
        tags
        displayFulfillmentStatus
        totalPriceSet { shopMoney { amount } }
      }
    }
  }
}`

const orderDetailQuery = `
query ($id: ID!) {
  node(id: $id) {
    ... on Order {
      id
      name
      email
      note
      createdAt
      tags
      displayFulfillmentStatus
      totalPriceSet { shopMoney { amount } }
      lineItems(first: 50) {
        edges {
          node {
            title
            sku
            quantity
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SearchOrders runs a GraphQL order search against the platform. The query
// string uses the platform's own search syntax (e.g. "email:a@b.com").
func (c *Client) SearchOrders(ctx context.Context, search string) ([]OrderSummary, error) {
	c.log(ctx, "request", "search_orders", map[string]any{"query": search})

	raw, err := c.graphql(ctx, orderSearchQuery, map[string]any{"query": search})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Orders struct {
			Edges []struct {
				Node struct {
					ID                       string `json:"id"`
					Name                     string `json:"name"`
					Email                    string `json:"email"`
					CreatedAt                string `json:"createdAt"`
					Tags                     []string
					DisplayFulfillmentStatus string `json:"displayFulfillmentStatus"`
					TotalPriceSet            struct {
						ShopMoney struct {
							Amount string `json:"amount"`
						} `json:"shopMoney"`
					} `json:"totalPriceSet"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order search")
	}

	summaries := make([]OrderSummary, 0, len(payload.Orders.Edges))
	for _, edge := range payload.Orders.Edges {
		node := edge.Node
		summaries = append(summaries, OrderSummary{
			GID:               node.ID,
			Name:              node.Name,
			Email:             node.Email,
			CreatedAt:         node.CreatedAt,
			Tags:              strings.Join(node.Tags, ", "),
			FulfillmentStatus: node.DisplayFulfillmentStatus,
			TotalPrice:        node.TotalPriceSet.ShopMoney.Amount,
		})
	}

	c.log(ctx, "response", "search_orders", map[string]any{"count": len(summaries)})
	return summaries, nil
}

// OrderDetail fetches one order by its GraphQL global id, including its
// line items. A gid that resolves to nothing (or to a non-order node)
// returns a NOT_FOUND error rather than an empty detail.
func (c *Client) OrderDetail(ctx context.Context, gid string) (*OrderDetail, error) {
	c.log(ctx, "request", "order_detail", map[string]any{"gid": gid})

	raw, err := c.graphql(ctx, orderDetailQuery, map[string]any{"id": gid})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Node *struct {
			ID                       string   `json:"id"`
			Name                     string   `json:"name"`
			Email                    string   `json:"email"`
			Note                     string   `json:"note"`
			CreatedAt                string   `json:"createdAt"`
			Tags                     []string `json:"tags"`
			DisplayFulfillmentStatus string   `json:"displayFulfillmentStatus"`
			TotalPriceSet            struct {
				ShopMoney struct {
					Amount string `json:"amount"`
				} `json:"shopMoney"`
			} `json:"totalPriceSet"`
			LineItems struct {
				Edges []struct {
					Node struct {
						Title    string `json:"title"`
						SKU      string `json:"sku"`
						Quantity int    `json:"quantity"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"lineItems"`
		} `json:"node"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order detail")
	}
	if payload.Node == nil || payload.Node.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "platform order not found").
			WithDetails(map[string]any{"gid": gid})
	}

	node := payload.Node
	detail := &OrderDetail{
		OrderSummary: OrderSummary{
			GID:               node.ID,
			Name:              node.Name,
			Email:             node.Email,
			CreatedAt:         node.CreatedAt,
			Tags:              strings.Join(node.Tags, ", "),
			FulfillmentStatus: node.DisplayFulfillmentStatus,
			TotalPrice:        node.TotalPriceSet.ShopMoney.Amount,
		},
		Note:      node.Note,
		LineItems: make([]OrderDetailLine, 0, len(node.LineItems.Edges)),
	}
	for _, edge := range node.LineItems.Edges {
		detail.LineItems = append(detail.LineItems, OrderDetailLine(edge.Node))
	}

	c.log(ctx, "response", "order_detail", map[string]any{"gid": gid, "line_items": len(detail.LineItems)})
	return detail, nil
}

func (c *Client) graphql(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	var resp graphqlResponse
	body := graphqlRequest{Query: query, Variables: variables}
	if err := c.do(ctx, http.MethodPost, "/graphql.json", nil, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("graphql error: %s", strings.Join(messages, "; ")))
	}
	return resp.Data, nil
}
