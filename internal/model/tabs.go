// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// StarTab is a section of the star profile page.
type StarTab string

// Star profile tabs.
const (
	StarTabOverview    StarTab = "overview"
	StarTabBiography   StarTab = "biography"
	StarTabFilmography StarTab = "filmography"
	StarTabPhotos      StarTab = "photos"
	StarTabVideos      StarTab = "videos"
)

// StarTabs lists the profile tabs in display order.
var StarTabs = []StarTab{StarTabOverview, StarTabBiography, StarTabFilmography, StarTabPhotos, StarTabVideos}

// ParseStarTab returns the tab named s, or the overview tab for unknown values.
func ParseStarTab(s string) StarTab {
	for _, t := range StarTabs {
		if string(t) == s {
			return t
		}
	}
	return StarTabOverview
}

// Label returns the tab caption.
func (t StarTab) Label() string {
	switch t {
	case StarTabBiography:
		return "Biography"
	case StarTabFilmography:
		return "Filmography"
	case StarTabPhotos:
		return "Photos"
	case StarTabVideos:
		return "Videos"
	default:
		return "Overview"
	}
}

// AdminTab is one of the management views of the admin dashboard.
type AdminTab string

// Admin dashboard tabs.
const (
	AdminTabStars    AdminTab = "stars"
	AdminTabNews     AdminTab = "news"
	AdminTabUsers    AdminTab = "users"
	AdminTabComments AdminTab = "comments"
	AdminTabSocial   AdminTab = "social"
)

// AdminTabs lists the dashboard tabs in display order.
var AdminTabs = []AdminTab{AdminTabStars, AdminTabNews, AdminTabUsers, AdminTabComments, AdminTabSocial}

// ParseAdminTab returns the tab named s, or the stars tab for unknown values.
func ParseAdminTab(s string) AdminTab {
	for _, t := range AdminTabs {
		if string(t) == s {
			return t
		}
	}
	return AdminTabStars
}

// Label returns the tab caption.
func (t AdminTab) Label() string {
	switch t {
	case AdminTabNews:
		return "News"
	case AdminTabUsers:
		return "Users"
	case AdminTabComments:
		return "Comments"
	case AdminTabSocial:
		return "Social Media"
	default:
		return "Stars"
	}
}

// AdminOnly reports whether the tab requires the admin role rather than editor.
func (t AdminTab) AdminOnly() bool {
	return t == AdminTabUsers
}

// StarFormTab is a step of the add/edit star form.
type StarFormTab string

// Star form tabs.
const (
	StarFormBasic       StarFormTab = "basic"
	StarFormDetails     StarFormTab = "details"
	StarFormFilmography StarFormTab = "filmography"
	StarFormGallery     StarFormTab = "gallery"
	StarFormSocial      StarFormTab = "social"
)

// StarFormTabs lists the form tabs in display order.
var StarFormTabs = []StarFormTab{StarFormBasic, StarFormDetails, StarFormFilmography, StarFormGallery, StarFormSocial}

// ParseStarFormTab returns the tab named s, or the basic tab for unknown values.
func ParseStarFormTab(s string) StarFormTab {
	for _, t := range StarFormTabs {
		if string(t) == s {
			return t
		}
	}
	return StarFormBasic
}

// Label returns the tab caption.
func (t StarFormTab) Label() string {
	switch t {
	case StarFormDetails:
		return "Details"
	case StarFormFilmography:
		return "Filmography"
	case StarFormGallery:
		return "Gallery"
	case StarFormSocial:
		return "Social Media"
	default:
		return "Basic Info"
	}
}

// ProfileTab is a section of the signed-in user's profile page.
type ProfileTab string

// Profile tabs.
const (
	ProfileTabOverview      ProfileTab = "overview"
	ProfileTabFavorites     ProfileTab = "favorites"
	ProfileTabNotifications ProfileTab = "notifications"
	ProfileTabSettings      ProfileTab = "settings"
)

// ProfileTabs lists the profile tabs in display order.
var ProfileTabs = []ProfileTab{ProfileTabOverview, ProfileTabFavorites, ProfileTabNotifications, ProfileTabSettings}

// ParseProfileTab returns the tab named s, or the overview tab for unknown values.
func ParseProfileTab(s string) ProfileTab {
	for _, t := range ProfileTabs {
		if string(t) == s {
			return t
		}
	}
	return ProfileTabOverview
}

// Label returns the tab caption.
func (t ProfileTab) Label() string {
	switch t {
	case ProfileTabFavorites:
		return "Favorites"
	case ProfileTabNotifications:
		return "Notifications"
	case ProfileTabSettings:
		return "Settings"
	default:
		return "Overview"
	}
}
