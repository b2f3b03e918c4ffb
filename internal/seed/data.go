// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seed

import (
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
)

// DemoStars is the fixed demo catalogue.
var DemoStars = []service.StarInput{
	{
		FullName:       "Can Yaman",
		StarType:       model.StarTypeActor,
		CurrentProject: "El Turco",
		BirthDate:      "1989-11-08",
		BirthPlace:     "İstanbul",
		Biography:      "Hukuk eğitimini yarıda bırakıp oyunculuğa geçti. Erkenci Kuş ile uluslararası üne kavuştu.",
		Education:      "Yeditepe Üniversitesi, Hukuk",
		Filmography: []model.FilmographyEntry{
			{Title: "Erkenci Kuş", Role: "Can Divit", Year: 2018, StreamingOn: "Netflix"},
			{Title: "Bay Yanlış", Role: "Özgür Atasoy", Year: 2020},
			{Title: "Sandokan", Role: "Sandokan", Year: 2025},
		},
		Flags: model.StarFlags{IsFeatured: true, IsTrending: true, IsInfluential: true},
	},
	{
		FullName:       "Cansu Dere",
		StarType:       model.StarTypeActress,
		CurrentProject: "Sadakatsiz",
		BirthDate:      "1980-10-14",
		BirthPlace:     "Ankara",
		Biography:      "Arkeoloji mezunu oyuncu, Ezel ve Anne dizileriyle tanındı.",
		Education:      "İstanbul Üniversitesi, Arkeoloji",
		Filmography: []model.FilmographyEntry{
			{Title: "Ezel", Role: "Eyşan", Year: 2009},
			{Title: "Anne", Role: "Zeynep", Year: 2016},
			{Title: "Sadakatsiz", Role: "Asya", Year: 2020, StreamingOn: "Disney+"},
		},
		Flags: model.StarFlags{IsTrending: true},
	},
	{
		FullName:       "Hande Erçel",
		StarType:       model.StarTypeActress,
		CurrentProject: "Rüzgara Bırak",
		BirthDate:      "1993-11-24",
		BirthPlace:     "Bandırma",
		Biography:      "Model olarak başladığı kariyerine Aşk Laftan Anlamaz ve Sen Çal Kapımı ile devam etti.",
		Education:      "Mimar Sinan Güzel Sanatlar Üniversitesi",
		Filmography: []model.FilmographyEntry{
			{Title: "Aşk Laftan Anlamaz", Role: "Hayat Uzun", Year: 2016},
			{Title: "Sen Çal Kapımı", Role: "Eda Yıldız", Year: 2020, StreamingOn: "Netflix"},
		},
		Flags: model.StarFlags{IsFeatured: true, IsInfluential: true},
	},
	{
		FullName:       "Kıvanç Tatlıtuğ",
		StarType:       model.StarTypeActor,
		CurrentProject: "Kübra",
		BirthDate:      "1983-10-27",
		BirthPlace:     "Adana",
		Biography:      "Eski basketbolcu ve model; Gümüş ve Aşk-ı Memnu ile bölgesel bir yıldız oldu.",
		Filmography: []model.FilmographyEntry{
			{Title: "Aşk-ı Memnu", Role: "Behlül", Year: 2008},
			{Title: "Kuzey Güney", Role: "Kuzey", Year: 2011},
			{Title: "Kübra", Role: "Gökhan", Year: 2024, StreamingOn: "Netflix"},
		},
		Flags: model.StarFlags{IsFeatured: true, IsInfluential: true},
	},
	{
		FullName:       "Burak Özçivit",
		StarType:       model.StarTypeActor,
		CurrentProject: "Kuruluş: Osman",
		BirthDate:      "1984-12-24",
		BirthPlace:     "İstanbul",
		Filmography: []model.FilmographyEntry{
			{Title: "Muhteşem Yüzyıl", Role: "Malkoçoğlu Bali Bey", Year: 2011},
			{Title: "Kara Sevda", Role: "Kemal Soydere", Year: 2015},
			{Title: "Kuruluş: Osman", Role: "Osman Bey", Year: 2019},
		},
		Flags: model.StarFlags{IsTrending: true},
	},
	{
		FullName:       "Demet Özdemir",
		StarType:       model.StarTypeActress,
		CurrentProject: "Doğduğun Ev Kaderindir",
		BirthDate:      "1992-02-26",
		BirthPlace:     "İzmir",
		Filmography: []model.FilmographyEntry{
			{Title: "Erkenci Kuş", Role: "Sanem Aydın", Year: 2018},
			{Title: "Doğduğun Ev Kaderindir", Role: "Zeynep", Year: 2019},
		},
		Flags: model.StarFlags{IsRising: true},
	},
	{
		FullName:       "Kerem Bürsin",
		StarType:       model.StarTypeActor,
		CurrentProject: "Sen Çal Kapımı",
		BirthDate:      "1987-06-04",
		BirthPlace:     "İstanbul",
		Filmography: []model.FilmographyEntry{
			{Title: "Güneşin Kızları", Role: "Savaş", Year: 2015},
			{Title: "Sen Çal Kapımı", Role: "Serkan Bolat", Year: 2020, StreamingOn: "Netflix"},
		},
		Flags: model.StarFlags{IsFeatured: true},
	},
	{
		FullName:       "Çağatay Ulusoy",
		StarType:       model.StarTypeActor,
		CurrentProject: "Kübra",
		BirthDate:      "1990-09-23",
		BirthPlace:     "İstanbul",
		Filmography: []model.FilmographyEntry{
			{Title: "Medcezir", Role: "Yaman", Year: 2013},
			{Title: "Hakan: Muhafız", Role: "Hakan", Year: 2018, StreamingOn: "Netflix"},
		},
		Flags: model.StarFlags{IsTrending: true, IsRising: true},
	},
	{
		FullName:   "Tuba Büyüküstün",
		StarType:   model.StarTypeActress,
		BirthDate:  "1982-07-05",
		BirthPlace: "İstanbul",
		Filmography: []model.FilmographyEntry{
			{Title: "Gönülçelen", Role: "Hasret", Year: 2010},
			{Title: "Kara Para Aşk", Role: "Elif", Year: 2014},
		},
		Flags: model.StarFlags{IsInfluential: true},
	},
	{
		FullName:   "Engin Akyürek",
		StarType:   model.StarTypeActor,
		BirthDate:  "1981-10-12",
		BirthPlace: "Ankara",
		Filmography: []model.FilmographyEntry{
			{Title: "Fatmagül'ün Suçu Ne?", Role: "Kerim", Year: 2010},
			{Title: "Sefirin Kızı", Role: "Sancar", Year: 2019},
		},
	},
	{
		FullName:   "Serenay Sarıkaya",
		StarType:   model.StarTypeActress,
		BirthDate:  "1992-07-01",
		BirthPlace: "Ankara",
		Filmography: []model.FilmographyEntry{
			{Title: "Medcezir", Role: "Mira", Year: 2013},
			{Title: "Şahsiyet", Role: "Nevra", Year: 2018},
		},
		Flags: model.StarFlags{IsRising: true},
	},
	{
		FullName:   "Afra Saraçoğlu",
		StarType:   model.StarTypeActress,
		BirthDate:  "1997-12-02",
		BirthPlace: "İstanbul",
		Filmography: []model.FilmographyEntry{
			{Title: "Yalı Çapkını", Role: "Seyran", Year: 2022},
		},
		Flags: model.StarFlags{IsRising: true, IsTrending: true},
	},
	{
		FullName:   "İlker Kaleli",
		StarType:   model.StarTypeActor,
		BirthDate:  "1978-10-11",
		BirthPlace: "Ankara",
		Filmography: []model.FilmographyEntry{
			{Title: "Poyraz Karayel", Role: "Poyraz", Year: 2015},
		},
	},
}

var demoSocial = map[string]map[model.Platform]string{
	"Can Yaman": {
		model.PlatformInstagram: "canyaman",
		model.PlatformTwitter:   "CanYaman",
	},
	"Hande Erçel": {
		model.PlatformInstagram: "handemiyy",
		model.PlatformTikTok:    "handemiyy",
	},
	"Kıvanç Tatlıtuğ": {
		model.PlatformInstagram: "kivanctatlitug",
		model.PlatformFacebook:  "kivanctatlitug",
	},
	"Kerem Bürsin": {
		model.PlatformInstagram: "kerembursin",
	},
}

type demoArticle struct {
	star  string
	input service.NewsInput
}

var demoNews = []demoArticle{
	{
		star: "Can Yaman",
		input: service.NewsInput{
			Title:   "Can Yaman yeni dizisi için İtalya'da",
			Content: "**Can Yaman**, yeni uluslararası projesinin çekimleri için İtalya'ya gitti.\n\nSetten ilk kareler sosyal medyada büyük ilgi gördü.",
			Status:  model.NewsStatusPublished,
		},
	},
	{
		star: "Hande Erçel",
		input: service.NewsInput{
			Title:   "Hande Erçel'den yeni proje müjdesi",
			Content: "Hande Erçel yeni dizisinin ilk fragmanını paylaştı.\n\n> Heyecanlıyım, sizi de bekliyorum.",
			Status:  model.NewsStatusPublished,
		},
	},
	{
		star: "Afra Saraçoğlu",
		input: service.NewsInput{
			Title:   "Yalı Çapkını yeni sezon tarihi açıklandı",
			Content: "Afra Saraçoğlu'nun başrolünde yer aldığı dizinin yeni sezonu sonbaharda başlıyor.",
			Status:  model.NewsStatusPublished,
		},
	},
	{
		input: service.NewsInput{
			Title:   "Haftanın reyting sonuçları",
			Content: "Bu hafta reyting listesinde ilk üçe giren yapımlar belli oldu.\n\n1. Kuruluş: Osman\n2. Yalı Çapkını\n3. Kızılcık Şerbeti",
			Status:  model.NewsStatusPublished,
		},
	},
	{
		star: "Kerem Bürsin",
		input: service.NewsInput{
			Title:   "Kerem Bürsin film setinde",
			Content: "Taslak haber: detaylar netleşince yayımlanacak.",
			Status:  model.NewsStatusDraft,
		},
	},
}
