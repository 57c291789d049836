// Package tool resolves, validates and invokes the tools of one session.
//
// A [Catalog] holds the tools a session listed, each with its parameters in
// declaration order. A [Coercer] turns untrusted argument values from a model
// reply into the declared types, and a [Dispatcher] invokes the tool and
// normalizes faults into failed results.
//
// Tools served from the same process live in a [Registry]:
//
//	type AddArgs struct {
//	    A int `json:"a" desc:"First addend" required:"true"`
//	    B int `json:"b" desc:"Second addend" required:"true"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("add", "Add two numbers", func(ctx context.Context, args AddArgs) (string, error) {
//	        return strconv.Itoa(args.A + args.B), nil
//	    }),
//	)
//
// # Supported Struct Tags
//
//	json:"name"      - Property name
//	desc:"text"      - Description for the model
//	required:"true"  - Mark field as required
//	enum:"a,b,c"     - Allowed values (comma-separated)
package tool
