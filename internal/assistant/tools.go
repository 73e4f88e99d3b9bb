package assistant

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Tools returns the function definitions offered to the chat model.
func Tools() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolAddSale,
				Description: "Record a sale. Products and the contact are matched by name.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"items": {
							Type:        jsonschema.Array,
							Description: "Products sold",
							Items: &jsonschema.Definition{
								Type: jsonschema.Object,
								Properties: map[string]jsonschema.Definition{
									"productName": {Type: jsonschema.String, Description: "Product name as the user said it"},
									"quantity":    {Type: jsonschema.Integer, Description: "Units sold, at least 1"},
								},
								Required: []string{"productName", "quantity"},
							},
						},
						"paymentMethod": {
							Type: jsonschema.String,
							Enum: []string{"cash", "credit", "transfer"},
						},
						"contactName":    {Type: jsonschema.String, Description: "Customer name; required for credit"},
						"creditTermDays": {Type: jsonschema.Integer, Description: "Days until a credit sale is due"},
					},
					Required: []string{"items", "paymentMethod"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolAddPayment,
				Description: "Apply a payment to the contact's oldest open credit sale.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"contactName": {Type: jsonschema.String},
						"amount":      {Type: jsonschema.Integer, Description: "Amount paid in whole rupiah"},
					},
					Required: []string{"contactName", "amount"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolUpdateProduct,
				Description: "Change a product's name, price, cost or stock level.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"productName": {Type: jsonschema.String, Description: "Current product name"},
						"name":        {Type: jsonschema.String, Description: "New name"},
						"price":       {Type: jsonschema.Integer},
						"cost":        {Type: jsonschema.Integer},
						"stock":       {Type: jsonschema.Integer, Description: "New absolute stock level"},
					},
					Required: []string{"productName"},
				},
			},
		},
	}
}
