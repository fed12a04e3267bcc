package snapshot

// metadataHeadersToCollect is the allow-list of headers retained when
// simplifying response metadata.
var metadataHeadersToCollect = []string{"content_type"}

// ResponseMetadataTransformer simplifies every mapping stored under a
// ResponseMetadata key, at any nesting depth: only the status code (if
// present) and an allow-list of headers survive, all other metadata fields
// are discarded.
type ResponseMetadataTransformer struct{}

// NewResponseMetadataTransformer builds a response-metadata transformer.
func NewResponseMetadataTransformer() *ResponseMetadataTransformer {
	return &ResponseMetadataTransformer{}
}

func (t *ResponseMetadataTransformer) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	for _, k := range sortedKeys(doc) {
		if k == responseMetadataKey {
			if metadata, ok := doc[k].(map[string]any); ok {
				doc[k] = simplifyMetadata(metadata)
			}
			continue
		}
		if nested, ok := doc[k].(map[string]any); ok {
			out, err := t.Transform(nested, ctx)
			if err != nil {
				return nil, err
			}
			doc[k] = out
		}
	}
	return doc, nil
}

func simplifyMetadata(metadata map[string]any) map[string]any {
	simplifiedHeaders := map[string]any{}
	if headers, ok := metadata["HTTPHeaders"].(map[string]any); ok {
		for _, h := range metadataHeadersToCollect {
			if v, ok := headers[h]; ok && v != nil && v != "" {
				simplifiedHeaders[h] = v
			}
		}
	}
	simplified := map[string]any{
		"HTTPHeaders": simplifiedHeaders,
	}
	// The status code may already have been removed by a skip path.
	if code, ok := metadata["HTTPStatusCode"]; ok && code != nil && code != float64(0) && code != 0 {
		simplified["HTTPStatusCode"] = code
	}
	return simplified
}
