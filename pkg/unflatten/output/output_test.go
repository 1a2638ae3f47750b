package output

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

func sampleRecords() models.Array {
	recipient := models.NewObject()
	recipient.Set("name", models.Scalar{Value: "Org <X>"})

	grant := models.NewObject()
	grant.Set("id", models.Scalar{Value: "A1"})
	grant.Set("amount", models.Scalar{Value: decimal.RequireFromString("12.50")})
	grant.Set("count", models.Scalar{Value: int64(3)})
	grant.Set("open", models.Scalar{Value: true})
	grant.Set("tags", models.Scalar{Value: []string{"a", "b"}})
	grant.Set("recipients", models.Array{recipient})
	return models.Array{grant}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleRecords(), "", false)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data), string(data))

	doc := gjson.ParseBytes(data)
	assert.True(t, doc.IsArray())
	assert.Equal(t, "A1", doc.Get("0.id").String())
	assert.Equal(t, gjson.Number, doc.Get("0.amount").Type)
	assert.Equal(t, "12.5", doc.Get("0.amount").Raw)
	assert.Equal(t, int64(3), doc.Get("0.count").Int())
	assert.True(t, doc.Get("0.open").Bool())
	assert.Equal(t, `["a","b"]`, doc.Get("0.tags").Raw)
	assert.Equal(t, "Org <X>", doc.Get("0.recipients.0.name").String())

	var keys []string
	doc.Get("0").ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"id", "amount", "count", "open", "tags", "recipients"}, keys, "field order is kept")
}

func TestToJSONRootListPathAndPretty(t *testing.T) {
	data, err := ToJSON(sampleRecords(), "grants", true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"grants\": ["), string(data))
	assert.Equal(t, "A1", gjson.GetBytes(data, "grants.0.id").String())

	empty, err := ToJSON(nil, "grants", false)
	require.NoError(t, err)
	assert.Equal(t, `{"grants":[]}`, string(empty))
}

func TestToJSONRejectsPendingGroups(t *testing.T) {
	obj := models.NewObject()
	obj.Set("items", models.NewMultiMap("id", false))
	_, err := ToJSON(models.Array{obj}, "", false)
	assert.ErrorIs(t, err, ErrNotFinalized)
}

func TestToXML(t *testing.T) {
	narrative := models.NewObject()
	narrative.Set("@xml:lang", models.Scalar{Value: "en"})
	narrative.Set("text()", models.Scalar{Value: "A & B"})

	title := models.NewObject()
	title.Set("narrative", models.Array{narrative})

	activity := models.NewObject()
	activity.Set("@default-currency", models.Scalar{Value: "GBP"})
	activity.Set("iati-identifier", models.Scalar{Value: "GB-1"})
	activity.Set("title", title)
	activity.Set("budget", models.Scalar{Value: decimal.RequireFromString("10.0")})

	data, err := ToXML(models.Array{activity}, "", "", false)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<iati-activities><iati-activity default-currency="GBP">` +
		`<iati-identifier>GB-1</iati-identifier>` +
		`<title><narrative xml:lang="en">A &amp; B</narrative></title>` +
		`<budget>10</budget>` +
		`</iati-activity></iati-activities>`
	assert.Equal(t, expected, string(data))
}

func TestToXMLCustomTagsAndRepeats(t *testing.T) {
	rec := models.NewObject()
	rec.Set("code", models.Scalar{Value: []string{"x", "y"}})

	data, err := ToXML(models.Array{rec, rec}, "orgs", "org", true)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "<orgs>")
	assert.Equal(t, 2, strings.Count(out, "<org>"))
	assert.Equal(t, 2, strings.Count(out, "<code>x</code>"))
	assert.Contains(t, out, "    <code>y</code>")

	bad := models.NewObject()
	bad.Set("@attr", models.Array{})
	_, err = ToXML(models.Array{bad}, "", "", false)
	assert.Error(t, err)
}
