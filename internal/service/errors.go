package service

import "errors"

// ErrEmptyCart rejects checkout on an empty cart. The message doubles as the
// validation message key shown on the order form.
var ErrEmptyCart = errors.New("cart.empty")
