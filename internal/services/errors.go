package services

import "errors"

// Domain errors surfaced by the article service. Handlers map these to
// 400-class responses with the error text as the detail message.
var (
	ErrSelfFavorite       = errors.New("you cannot favorite your own article")
	ErrAlreadyFavorited   = errors.New("you have already favorited this article")
	ErrNotFavorited       = errors.New("this article is not in your favorites list")
	ErrBlankReportMessage = errors.New("a report message is required")
	ErrInvalidSocialToken = errors.New("the token is either invalid or expired, please login again")
)
