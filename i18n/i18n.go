// Package i18n translates API messages into the languages the app supports.
package i18n

import (
	"golang.org/x/text/language"
)

const DefaultLanguage = "en"

// Message keys.
const (
	NotAuthenticated   = "notAuthenticated"
	InvalidToken       = "invalidToken"
	InvalidCredentials = "invalidCredentials"
	EmailTaken         = "emailTaken"
	AdminNotAllowed    = "adminNotAllowed"
	InvalidRequest     = "invalidRequest"
	InvalidID          = "invalidId"
	IssueNotFound      = "issueNotFound"
	CommentNotFound    = "commentNotFound"
	UserNotFound       = "userNotFound"
	Forbidden          = "forbidden"
	RateLimited        = "rateLimited"
	SomethingWentWrong = "somethingWentWrong"
	FeedUnavailable    = "feedUnavailable"
	InvalidLocation    = "invalidLocation"
	TitleRequired      = "titleRequired"
	TooManyImages      = "tooManyImages"
	UnsupportedImage   = "unsupportedImage"
	CommentLength      = "commentLength"
	AlreadyUpvoted     = "alreadyUpvoted"
	InvalidLanguage    = "invalidLanguage"
	LoggedOut          = "loggedOut"
	Deleted            = "deleted"
)

var catalog = map[string]map[string]string{
	"en": {
		NotAuthenticated:   "User not authenticated",
		InvalidToken:       "Invalid authorization token",
		InvalidCredentials: "Invalid credentials",
		EmailTaken:         "User with this email already exists",
		AdminNotAllowed:    "The admin role cannot be self-assigned",
		InvalidRequest:     "Invalid request",
		InvalidID:          "Invalid id",
		IssueNotFound:      "Issue not found",
		CommentNotFound:    "Comment not found",
		UserNotFound:       "User not found",
		Forbidden:          "You are not allowed to do that",
		RateLimited:        "Rate limit exceeded",
		SomethingWentWrong: "Something went wrong",
		FeedUnavailable:    "Could not load issues",
		InvalidLocation:    "Latitude and longitude must be given together and be in range",
		TitleRequired:      "Title is required and must be at most 200 characters",
		TooManyImages:      "At most 3 images can be attached",
		UnsupportedImage:   "Images must be JPEG, PNG, WebP or GIF",
		CommentLength:      "Comment must be between 1 and 1000 characters",
		AlreadyUpvoted:     "You have already upvoted this issue",
		InvalidLanguage:    "Unsupported language",
		LoggedOut:          "Logged out successfully",
		Deleted:            "Deleted",
	},
	"hi": {
		NotAuthenticated:   "उपयोगकर्ता प्रमाणित नहीं है",
		InvalidToken:       "अमान्य प्राधिकरण टोकन",
		InvalidCredentials: "अमान्य क्रेडेंशियल",
		EmailTaken:         "इस ईमेल वाला उपयोगकर्ता पहले से मौजूद है",
		AdminNotAllowed:    "एडमिन भूमिका स्वयं नहीं ली जा सकती",
		InvalidRequest:     "अमान्य अनुरोध",
		InvalidID:          "अमान्य आईडी",
		IssueNotFound:      "समस्या नहीं मिली",
		CommentNotFound:    "टिप्पणी नहीं मिली",
		UserNotFound:       "उपयोगकर्ता नहीं मिला",
		Forbidden:          "आपको यह करने की अनुमति नहीं है",
		RateLimited:        "सीमा पार हो गई",
		SomethingWentWrong: "कुछ गलत हो गया",
		FeedUnavailable:    "समस्याएं लोड नहीं हो सकीं",
		InvalidLocation:    "अक्षांश और देशांतर एक साथ और सीमा के भीतर होने चाहिए",
		TitleRequired:      "शीर्षक आवश्यक है और 200 अक्षरों से अधिक नहीं होना चाहिए",
		TooManyImages:      "अधिकतम 3 चित्र जोड़े जा सकते हैं",
		UnsupportedImage:   "चित्र JPEG, PNG, WebP या GIF होने चाहिए",
		CommentLength:      "टिप्पणी 1 से 1000 अक्षरों के बीच होनी चाहिए",
		AlreadyUpvoted:     "आप पहले ही इस समस्या को अपवोट कर चुके हैं",
		InvalidLanguage:    "असमर्थित भाषा",
		LoggedOut:          "सफलतापूर्वक लॉग आउट किया गया",
		Deleted:            "हटाया गया",
	},
}

// Bundle looks up translated messages and negotiates languages.
type Bundle struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages map[string]map[string]string
}

// NewBundle returns the built-in English and Hindi catalog.
func NewBundle() *Bundle {
	tags := []language.Tag{language.English, language.Hindi}
	return &Bundle{
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		messages: catalog,
	}
}

// Supports reports whether lang is one of the bundle's base languages.
func (b *Bundle) Supports(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// Match picks the best supported language for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := b.tags[idx].Base()
	return base.String()
}

// T translates key into lang, falling back to English and then to the key itself.
func (b *Bundle) T(lang, key string) string {
	if msg, ok := b.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := b.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}
