package search

import (
	"context"
	"fmt"
	"net/url"
)

// MockProvider returns canned Indonesian results built around the query.
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Search(_ context.Context, query string) (Response, error) {
	return MockResponse(query), nil
}

func MockResponse(query string) Response {
	q := url.QueryEscape(query)
	return Response{
		Items: []Result{
			{
				Title:   fmt.Sprintf("%s - Informasi Terlengkap", query),
				Link:    "https://www.tokopedia.com/search?q=" + q,
				Snippet: fmt.Sprintf("Temukan berbagai pilihan %s terbaik dengan kualitas premium dan harga terjangkau. Belanja sekarang dan dapatkan penawaran menarik.", query),
				Favicon: FaviconURL("https://tokopedia.com"),
			},
			{
				Title:   fmt.Sprintf("Jual %s Murah & Berkualitas", query),
				Link:    "https://shopee.co.id/search?keyword=" + q,
				Snippet: fmt.Sprintf("%s dengan berbagai pilihan model dan warna. Gratis ongkir dan cashback untuk pembelian pertama.", query),
				Favicon: FaviconURL("https://shopee.co.id"),
			},
			{
				Title:   fmt.Sprintf("%s - Wikipedia bahasa Indonesia", query),
				Link:    "https://id.wikipedia.org/wiki/" + url.PathEscape(query),
				Snippet: fmt.Sprintf("%s adalah... Artikel lengkap mengenai %s dengan penjelasan detail dan referensi terpercaya.", query, query),
				Favicon: FaviconURL("https://wikipedia.org"),
			},
			{
				Title:   fmt.Sprintf("Tips Memilih %s yang Tepat", query),
				Link:    "https://www.detik.com/search/?query=" + q,
				Snippet: fmt.Sprintf("Panduan lengkap memilih %s sesuai kebutuhan. Tips dan trik dari para ahli untuk mendapatkan %s terbaik.", query, query),
				Favicon: FaviconURL("https://detik.com"),
			},
			{
				Title:   fmt.Sprintf("%s Terbaru", query),
				Link:    "https://www.liputan6.com/search?q=" + q,
				Snippet: fmt.Sprintf("Berita terkini seputar %s. Update informasi terbaru dan terpercaya dari berbagai sumber.", query),
				Favicon: FaviconURL("https://liputan6.com"),
			},
		},
		SearchInformation: &Information{TotalResults: "1000000", SearchTime: 0.12},
	}
}
