package olx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"re-crawler/models"
	"re-crawler/utils"
)

// Selectors for olx.ro search result pages.
const (
	AdEntrySelector   = "div.offer-wrapper"
	AdTimeSelector    = "i[data-icon='clock']"
	AdLinkSelector    = "a.detailsLink"
	storiaHost        = "storia.ro"
	pageParam         = "page"
	labelToday        = "Azi"
	labelYesterday    = "Ieri"
	firstFollowUpPage = 2
)

// Freshness classifies an entry by its relative post-time label.
type Freshness int

const (
	Older Freshness = iota
	Yesterday
	Today
)

func (f Freshness) String() string {
	switch f {
	case Today:
		return "today"
	case Yesterday:
		return "yesterday"
	default:
		return "older"
	}
}

// Fresh reports whether the entry falls inside the today-or-yesterday window.
func (f Freshness) Fresh() bool { return f == Today || f == Yesterday }

// ParseFreshness reads labels such as "Azi 14:02" or "Ieri 09:15".
// Anything else with text in it counts as older; a blank label is an entry fault.
func ParseFreshness(label string) (Freshness, error) {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return Older, fmt.Errorf("%w: missing post time label", ErrEntryParse)
	case strings.Contains(label, labelToday):
		return Today, nil
	case strings.Contains(label, labelYesterday):
		return Yesterday, nil
	default:
		return Older, nil
	}
}

// SourceFromLink infers the hosting site from a detail link.
func SourceFromLink(link string) models.AdSource {
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host := strings.ToLower(u.Hostname())
		if host == storiaHost || strings.HasSuffix(host, "."+storiaHost) {
			return models.SourceStoria
		}
		return models.SourceOLX
	}
	if strings.Contains(link, storiaHost) {
		return models.SourceStoria
	}
	return models.SourceOLX
}

// CityFromURL returns the path segment right before the query string:
// ".../apartamente-garsoniere-de-vanzare/cluj-napoca/?search..." → "cluj-napoca".
func CityFromURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPagination, err)
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: no city segment in %q", ErrPagination, pageURL)
	}
	return path[strings.LastIndex(path, "/")+1:], nil
}

// NextPageURL rewrites the page=N query parameter to N+1, or appends page=2
// when the URL has none. The rest of the query is kept byte for byte so the
// site's encoded sort order survives.
func NextPageURL(pageURL string) (string, int, error) {
	base, frag, _ := strings.Cut(pageURL, "#")
	path, query, hasQuery := strings.Cut(base, "?")

	if !hasQuery || query == "" {
		return path + "?" + pageParam + "=" + strconv.Itoa(firstFollowUpPage) + suffix(frag), firstFollowUpPage, nil
	}

	params := strings.Split(query, "&")
	current := 1
	found := -1
	for i, p := range params {
		key, val, _ := strings.Cut(p, "=")
		if key != pageParam {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return "", 0, fmt.Errorf("%w: bad page number %q in %q", ErrPagination, val, pageURL)
		}
		current, found = n, i
	}

	next := current + 1
	param := pageParam + "=" + strconv.Itoa(next)
	if found >= 0 {
		params[found] = param
	} else {
		params = append(params, param)
	}
	return path + "?" + strings.Join(params, "&") + suffix(frag), next, nil
}

func suffix(frag string) string {
	if frag == "" {
		return ""
	}
	return "#" + frag
}

// Walker decides which ads on a results page are followed and whether the
// next page is requested. It keeps no state between pages.
type Walker struct {
	logger *utils.Logger
}

// NewWalker creates a Walker logging through logger.
func NewWalker(logger *utils.Logger) *Walker {
	return &Walker{logger: logger.Named("walker")}
}

// Walk evaluates every entry on the page before deciding on pagination.
// Results are assumed to be sorted newest first, so a page without any
// fresh entry ends the city's branch.
func (w *Walker) Walk(pageURL string, doc *goquery.Selection) (models.WalkResult, error) {
	city, err := CityFromURL(pageURL)
	if err != nil {
		return models.WalkResult{}, err
	}
	res := models.WalkResult{City: city}

	var accepted []string
	doc.Find(AdEntrySelector).Each(func(i int, ad *goquery.Selection) {
		res.Entries++

		fresh, err := ParseFreshness(timeLabel(ad))
		if err != nil {
			res.EntryFaults++
			w.logger.Debug("entry %d on %s skipped: %v", i, pageURL, err)
			return
		}
		if !fresh.Fresh() {
			return
		}
		res.Fresh++

		link, ok := ad.Find(AdLinkSelector).Attr("href")
		link = strings.TrimSpace(link)
		if !ok || link == "" {
			res.Promoted++
			return
		}
		accepted = append(accepted, resolve(pageURL, link))
	})

	for _, link := range accepted {
		res.Tasks = append(res.Tasks, models.ExtractionTask{
			URL: link,
			Context: models.TaskContext{
				City:       city,
				AdSource:   SourceFromLink(link),
				PromoCount: res.Promoted,
			},
		})
	}

	if res.Fresh > 0 {
		next, page, err := NextPageURL(pageURL)
		if err != nil {
			return res, err
		}
		res.Next = &models.NextPageTask{URL: next, Page: page}
	}

	w.logger.Debug("%s: %d entries, %d fresh, %d promoted, %d faults, next=%t",
		city, res.Entries, res.Fresh, res.Promoted, res.EntryFaults, res.Next != nil)
	return res, nil
}

// timeLabel reads the direct text of the clock icon's parent, e.g. "Azi 14:02".
func timeLabel(ad *goquery.Selection) string {
	icon := ad.Find(AdTimeSelector).First()
	if icon.Length() == 0 {
		return ""
	}
	return ownText(icon.Parent())
}

func resolve(pageURL, link string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
