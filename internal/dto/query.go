package dto

import (
	"net/url"
	"strconv"
)

// PageQuery carries the page/limit parameters shared by paged lists.
type PageQuery struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

func (p PageQuery) apply(v url.Values) {
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value > 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

func setBool(v url.Values, key string, value *bool) {
	if value != nil {
		v.Set(key, strconv.FormatBool(*value))
	}
}

// Values encodes the page parameters on their own.
func (p PageQuery) Values() url.Values {
	v := url.Values{}
	p.apply(v)
	return v
}
