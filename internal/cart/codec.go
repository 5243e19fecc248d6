package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// ErrSnapshotRejected 快照版本或结构不符，购物车按空处理
var ErrSnapshotRejected = errors.New("cart snapshot rejected")

type encodedCart struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// Encode 序列化购物车（携带结构版本）
func Encode(c *Cart) ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(encodedCart{Version: constants.CartSchemaVersion, Items: items})
}

// Decode 反序列化购物车；版本不一致或任一行结构异常时返回空购物车与 ErrSnapshotRejected
func Decode(data []byte, pricing Pricing) (*Cart, error) {
	empty := New(pricing)
	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var payload encodedCart
	if err := decoder.Decode(&payload); err != nil {
		return empty, fmt.Errorf("%w: %v", ErrSnapshotRejected, err)
	}
	if payload.Version != constants.CartSchemaVersion {
		return empty, fmt.Errorf("%w: version %d, want %d", ErrSnapshotRejected, payload.Version, constants.CartSchemaVersion)
	}
	for i, item := range payload.Items {
		if err := validateLine(item); err != nil {
			return empty, fmt.Errorf("%w: line %d: %v", ErrSnapshotRejected, i, err)
		}
	}

	c := New(pricing)
	c.Items = payload.Items
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.recompute()
	return c, nil
}

func validateLine(item LineItem) error {
	if item.Product.ID == 0 {
		return errors.New("missing product id")
	}
	if item.Quantity <= 0 {
		return errors.New("non-positive quantity")
	}
	if item.Product.Price.IsNegative() {
		return errors.New("negative price")
	}
	if item.Variant != nil {
		if catalog.IsEmptyRef(item.Variant) {
			return errors.New("variant without identity")
		}
		if err := validateVariant(item.Variant); err != nil {
			return err
		}
	}
	for i := range item.Product.Variants {
		if err := validateVariant(&item.Product.Variants[i]); err != nil {
			return fmt.Errorf("product variant %d: %w", i, err)
		}
	}
	return nil
}

func validateVariant(v *models.VariantRef) error {
	if v.Stock < 0 {
		return errors.New("negative variant stock")
	}
	if v.Price.IsNegative() {
		return errors.New("negative variant price")
	}
	return nil
}
