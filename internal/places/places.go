// Package places supplies the twice-daily showcase posts: a rotating list
// of destinations with a community invite attached.
package places

import (
	"fmt"
	"math/rand"
)

// CommunityLink is appended to every showcase post.
const CommunityLink = "https://x.com/i/communities/1951416110240149783"

// Place is one showcase destination.
type Place struct {
	Name        string
	Description string
	Source      string
}

var catalog = []Place{
	{"Santorini, Greece", "White-washed buildings against blue Aegean waters", "https://unsplash.com/s/photos/santorini"},
	{"Bali, Indonesia", "Tropical paradise with rice terraces and temples", "https://unsplash.com/s/photos/bali"},
	{"Maldives", "Crystal clear waters and overwater bungalows", "https://unsplash.com/s/photos/maldives"},
	{"Swiss Alps", "Majestic mountains and pristine lakes", "https://unsplash.com/s/photos/swiss-alps"},
	{"Iceland", "Northern lights and dramatic landscapes", "https://unsplash.com/s/photos/iceland"},
	{"Machu Picchu, Peru", "Ancient Incan citadel in the clouds", "https://unsplash.com/s/photos/machu-picchu"},
	{"Bora Bora, French Polynesia", "Turquoise lagoons and luxury resorts", "https://unsplash.com/s/photos/bora-bora"},
	{"Kyoto, Japan", "Traditional temples and cherry blossoms", "https://unsplash.com/s/photos/kyoto"},
}

// Pick returns a random showcase place.
func Pick(r *rand.Rand) Place {
	return catalog[r.Intn(len(catalog))]
}

// Tweet formats a showcase post for p.
func Tweet(p Place) string {
	return fmt.Sprintf("🌍 %s\n\n%s\n\nJoin our community to discover more beautiful places:\n%s\n\n📸 %s",
		p.Name, p.Description, CommunityLink, p.Source)
}
