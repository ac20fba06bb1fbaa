package credit

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Details describes why a ledger row exists. The set of kinds is closed.
type Details interface {
	Kind() string
	operation() Operation
}

// AdminAdjustment records a relative change made from the admin console
type AdminAdjustment struct {
	Delta   int       `json:"delta"`
	AdminID uuid.UUID `json:"admin_id"`
	Reason  string    `json:"reason"`
}

// FeatureUsage records a metered feature charge
type FeatureUsage struct {
	Feature string `json:"feature"`
	Cost    int    `json:"cost"`
}

// AbsoluteSet records an admin overwrite of the balance
type AbsoluteSet struct {
	Target   float64   `json:"target"`
	Previous int       `json:"previous"`
	AdminID  uuid.UUID `json:"admin_id"`
	Reason   string    `json:"reason"`
}

func (AdminAdjustment) Kind() string { return "admin_adjustment" }
func (AdminAdjustment) operation() Operation { return OperationAdminAdjustment }
func (FeatureUsage) Kind() string { return "feature_usage" }
func (FeatureUsage) operation() Operation { return OperationFeatureUsage }
func (AbsoluteSet) Kind() string { return "absolute_set" }
func (AbsoluteSet) operation() Operation { return OperationAbsoluteSet }

// DetailsColumn stores Details as {"kind": ..., ...fields} JSON text
type DetailsColumn struct {
	Details
}

// MarshalJSON writes the kind tag followed by the variant's own fields.
// Field values are copied verbatim so integers keep full precision.
func (c DetailsColumn) MarshalJSON() ([]byte, error) {
	if c.Details == nil {
		return []byte(`{}`), nil
	}

	fields, err := json.Marshal(c.Details)
	if err != nil {
		return nil, err
	}
	fields = bytes.TrimSpace(fields)
	if len(fields) < 2 || fields[0] != '{' {
		return nil, fmt.Errorf("credit details: %s is not a JSON object", c.Details.Kind())
	}

	kind, err := json.Marshal(c.Details.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	buf.Write(kind)
	if rest := bytes.TrimSpace(fields[1:]); len(rest) > 0 && rest[0] != '}' {
		buf.WriteByte(',')
	}
	buf.Write(fields[1:])
	return buf.Bytes(), nil
}

// UnmarshalJSON picks the variant from the kind tag
func (c *DetailsColumn) UnmarshalJSON(data []byte) error {
	var tag struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	var d Details
	switch tag.Kind {
	case "":
		c.Details = nil
		return nil
	case AdminAdjustment{}.Kind():
		var v AdminAdjustment
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		d = v
	case FeatureUsage{}.Kind():
		var v FeatureUsage
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		d = v
	case AbsoluteSet{}.Kind():
		var v AbsoluteSet
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		d = v
	default:
		return fmt.Errorf("credit details: unknown kind %q", tag.Kind)
	}

	c.Details = d
	return nil
}

// Value implements driver.Valuer
func (c DetailsColumn) Value() (driver.Value, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (c *DetailsColumn) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		c.Details = nil
		return nil
	case string:
		return c.UnmarshalJSON([]byte(v))
	case []byte:
		return c.UnmarshalJSON(v)
	default:
		return fmt.Errorf("credit details: unsupported type %T", src)
	}
}
