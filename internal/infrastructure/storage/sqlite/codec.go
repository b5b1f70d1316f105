package sqlite

import (
	"encoding/json"
	"fmt"

	"gophtasks/internal/domain/task"
)

// encodeCollections и decodeCollections — единственное место, где вложенные
// комментарии и вложения переводятся в JSON-колонки и обратно.
func encodeCollections(p *task.Payload) (comments, media string, err error) {
	c := p.Comments
	if c == nil {
		c = []task.Comment{}
	}
	m := p.Media
	if m == nil {
		m = []task.Media{}
	}

	cb, err := json.Marshal(c)
	if err != nil {
		return "", "", fmt.Errorf("comments: %w", err)
	}
	mb, err := json.Marshal(m)
	if err != nil {
		return "", "", fmt.Errorf("media: %w", err)
	}
	return string(cb), string(mb), nil
}

func decodeCollections(comments, media string, p *task.Payload) error {
	if err := json.Unmarshal([]byte(comments), &p.Comments); err != nil {
		return fmt.Errorf("comments: %w", err)
	}
	if err := json.Unmarshal([]byte(media), &p.Media); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if len(p.Comments) == 0 {
		p.Comments = nil
	}
	if len(p.Media) == 0 {
		p.Media = nil
	}
	return nil
}
