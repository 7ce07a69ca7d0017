// Package language 는 메시지 언어를 english / hinglish / hindi 중 하나로 분류한다.
package language

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/cloudflare/ahocorasick"
	"github.com/forPelevin/gomoji"
	"golang.org/x/text/unicode/norm"
)

// Tag 는 언어 분류 결과다.
type Tag string

// 분류 태그다.
const (
	English  Tag = "english"
	Hinglish Tag = "hinglish"
	Hindi    Tag = "hindi"
)

// Tags 는 지원하는 전체 태그 목록이다.
func Tags() []Tag {
	return []Tag{English, Hinglish, Hindi}
}

// minLetters 보다 글자가 적으면 통계 판정을 하지 않는다.
const minLetters = 3

// Classifier 는 메시지 언어 판정기다.
type Classifier interface {
	Detect(text string) Tag
}

// Detector 는 스크립트, 로마자 힌디 어휘, 통계 판정을 순서대로 적용한다.
type Detector struct {
	lexicon *ahocorasick.Matcher
}

// NewDetector 는 기본 어휘로 판정기를 생성한다.
func NewDetector() *Detector {
	return NewDetectorWithLexicon(romanizedHindi)
}

// NewDetectorWithLexicon 은 주어진 로마자 힌디 어휘로 판정기를 생성한다.
func NewDetectorWithLexicon(words []string) *Detector {
	patterns := make([][]byte, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		// 단어 경계 매칭을 위해 앞뒤 공백을 붙인다.
		patterns = append(patterns, []byte(" "+word+" "))
	}
	return &Detector{lexicon: ahocorasick.NewMatcher(patterns)}
}

// Detect 는 text 의 언어 태그를 반환한다.
func (d *Detector) Detect(text string) Tag {
	cleaned := strings.TrimSpace(gomoji.RemoveEmojis(norm.NFC.String(text)))
	if cleaned == "" {
		return Hinglish
	}

	if hasIndicScript(cleaned) {
		return Hindi
	}

	words, letters := tokenize(cleaned)
	if d.isHinglish(words) {
		return Hinglish
	}
	if letters < minLetters {
		return Hinglish
	}

	info := whatlanggo.Detect(cleaned)
	switch info.Lang {
	case whatlanggo.Eng:
		return English
	case whatlanggo.Hin, whatlanggo.Urd:
		return Hindi
	case -1:
		return Hinglish
	default:
		return English
	}
}

// isHinglish 는 로마자 힌디 어휘 적중 비율로 판정한다.
func (d *Detector) isHinglish(words []string) bool {
	if len(words) == 0 {
		return false
	}
	padded := " " + strings.Join(words, " ") + " "
	hits := len(d.lexicon.MatchThreadSafe([]byte(padded)))
	return hits >= 2 || (hits > 0 && hits*4 >= len(words))
}

// hasIndicScript 는 데바나가리 또는 아랍 문자(우르두) 포함 여부다.
func hasIndicScript(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) || unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

// tokenize 는 소문자 단어 목록과 글자 수를 반환한다.
func tokenize(text string) ([]string, int) {
	letters := 0
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			letters++
			return unicode.ToLower(r)
		}
		if r == '\'' {
			return -1
		}
		return ' '
	}, text)
	return strings.Fields(mapped), letters
}
