package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRequest(t *testing.T) {
	ok := &ImportRequest{URLs: []string{" https://www.temu.com/goods.html?goods_id=1 ", "http://www.alibaba.com/product-detail/x_1.html"}, Provider: " Temu "}
	require.NoError(t, Import(ok))
	assert.Equal(t, []string{"https://www.temu.com/goods.html?goods_id=1", "http://www.alibaba.com/product-detail/x_1.html"}, ok.URLs)
	assert.Equal(t, "temu", ok.Provider)

	assert.Error(t, Import(&ImportRequest{}))
	assert.Error(t, Import(&ImportRequest{URLs: []string{"   "}}))

	err := Import(&ImportRequest{URLs: []string{"", "https://www.temu.com/goods.html?goods_id=1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ugyldig URL")

	err = Import(&ImportRequest{URLs: []string{"ftp://temu.com/x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ugyldig URL")

	err = Import(&ImportRequest{URLs: []string{"temu.com/goods.html"}})
	require.Error(t, err)

	err = Import(&ImportRequest{URLs: []string{"https://www.amazon.com/dp/1"}, Provider: "amazon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ukjent leverandør")

	many := make([]string, MaxImportURLs+1)
	for i := range many {
		many[i] = "https://www.temu.com/goods.html?goods_id=" + strings.Repeat("1", i+1)
	}
	err = Import(&ImportRequest{URLs: many})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "for mange")
}

func TestQ(t *testing.T) {
	q, ok := Q("  leselys blå ")
	assert.True(t, ok)
	assert.Equal(t, "leselys blå", q)

	_, ok = Q("<script>")
	assert.False(t, ok)
	_, ok = Q("   ")
	assert.False(t, ok)
}

func TestSlugCategoryPage(t *testing.T) {
	_, ok := Slug("book-light-a1b2c3")
	assert.True(t, ok)
	_, ok = Slug("../etc/passwd")
	assert.False(t, ok)

	_, ok = Category("Tilbehør")
	assert.True(t, ok)
	_, ok = Category("Annet; DROP")
	assert.False(t, ok)

	assert.Equal(t, 1, Page("x"))
	assert.Equal(t, 3, Page("3"))
	assert.Equal(t, 500, Page("99999"))
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Passw0rd!"))
	assert.False(t, Password("password"))
	assert.False(t, Password("Sh0rt!"))
}
