package dialect

import (
	"fmt"
	"sort"

	"github.com/roach88/hql/internal/queryir"
)

var (
	createTime = Field{Name: "create_time", Aliases: []string{"create-time", "ct"}, Type: Date}
	updateTime = Field{Name: "update_time", Aliases: []string{"update-time", "ut"}, Type: Date}
	favorite   = Field{Name: "favorite", Aliases: []string{"fav"}, Type: Flag}
	score      = Field{Name: "score", Type: Number}

	sortCreateTime = SortKey{Key: "create_time", Aliases: []string{"create-time", "ct"}}
	sortUpdateTime = SortKey{Key: "update_time", Aliases: []string{"update-time", "ut"}}
)

var imageDialect = mustNew(Image, queryir.MetaTag,
	[]queryir.MetaKind{queryir.MetaAuthor, queryir.MetaTopic, queryir.MetaTag, queryir.MetaSourceTag},
	[]Field{
		{Name: "id", Type: PatternNumber},
		score,
		favorite,
		{Name: "partition", Aliases: []string{"pt"}, Type: Date},
		createTime,
		updateTime,
		{Name: "order_time", Aliases: []string{"order-time", "ot"}, Type: Date},
		{Name: "filesize", Aliases: []string{"size"}, Type: Size},
		{Name: "resolution_width", Aliases: []string{"resolution-width", "width"}, Type: Number},
		{Name: "resolution_height", Aliases: []string{"resolution-height", "height"}, Type: Number},
		{Name: "description", Aliases: []string{"desc"}, Type: String},
		{Name: "tagme", Type: Enum, Enum: []EnumMember{
			{Value: "tag"},
			{Value: "author"},
			{Value: "topic"},
			{Value: "source"},
		}},
		{Name: "extension", Aliases: []string{"ext"}, Type: Enum, Enum: []EnumMember{
			{Value: "jpg", Aliases: []string{"jpeg"}},
			{Value: "png"},
			{Value: "gif"},
			{Value: "webp"},
			{Value: "bmp"},
			{Value: "avif"},
		}},
		{Name: "source_id", Aliases: []string{"id"}, Type: Number, Source: true},
		{Name: "source_site", Aliases: []string{"site"}, Type: String, Source: true},
		{Name: "source_page", Aliases: []string{"page"}, Type: Number, Source: true},
		{Name: "source_title", Aliases: []string{"title"}, Type: String, Source: true},
		{Name: "source_description", Aliases: []string{"description", "desc"}, Type: String, Source: true},
	},
	[]SortKey{
		{Key: "id"},
		{Key: "score"},
		{Key: "ordinal"},
		{Key: "partition", Aliases: []string{"pt"}},
		sortCreateTime,
		sortUpdateTime,
		{Key: "order_time", Aliases: []string{"order-time", "ot"}},
		{Key: "filesize", Aliases: []string{"size"}},
		{Key: "source_id", Aliases: []string{"id"}, Source: true},
		{Key: "source_site", Aliases: []string{"site"}, Source: true},
	},
)

var bookDialect = mustNew(Book, queryir.MetaTag,
	[]queryir.MetaKind{queryir.MetaAuthor, queryir.MetaTopic, queryir.MetaTag},
	[]Field{
		{Name: "id", Type: Number},
		score,
		favorite,
		{Name: "image_count", Aliases: []string{"image-count", "count"}, Type: Number},
		createTime,
		updateTime,
		{Name: "title", Type: String},
		{Name: "description", Aliases: []string{"desc"}, Type: String},
	},
	[]SortKey{
		{Key: "id"},
		{Key: "score"},
		{Key: "image_count", Aliases: []string{"image-count", "count"}},
		sortCreateTime,
		sortUpdateTime,
	},
)

var sourceDialect = mustNew(Source, queryir.MetaSourceTag,
	[]queryir.MetaKind{queryir.MetaSourceTag},
	[]Field{
		{Name: "site", Type: String},
		{Name: "id", Type: Number},
		{Name: "page", Type: Number},
		{Name: "title", Type: String},
		{Name: "description", Aliases: []string{"desc"}, Type: String},
		{Name: "status", Type: Enum, Enum: []EnumMember{
			{Value: "not_edited", Aliases: []string{"not-edited"}},
			{Value: "edited"},
			{Value: "error"},
			{Value: "ignored"},
		}},
		createTime,
		updateTime,
	},
	[]SortKey{
		{Key: "site"},
		{Key: "id"},
		sortCreateTime,
		sortUpdateTime,
	},
)

var topicDialect = mustNew(Topic, queryir.MetaName,
	[]queryir.MetaKind{queryir.MetaName},
	[]Field{
		favorite,
		{Name: "type", Type: Enum, Enum: []EnumMember{
			{Value: "copyright", Aliases: []string{"ip"}},
			{Value: "work"},
			{Value: "character", Aliases: []string{"chara"}},
		}},
		score,
		{Name: "count", Type: Number},
	},
	[]SortKey{
		{Key: "name"},
		{Key: "score"},
		{Key: "count"},
		sortCreateTime,
		sortUpdateTime,
	},
)

var authorDialect = mustNew(Author, queryir.MetaName,
	[]queryir.MetaKind{queryir.MetaName},
	[]Field{
		favorite,
		{Name: "type", Type: Enum, Enum: []EnumMember{
			{Value: "artist"},
			{Value: "studio"},
			{Value: "publisher"},
			{Value: "corporation"},
			{Value: "unknown"},
		}},
		score,
		{Name: "count", Type: Number},
	},
	[]SortKey{
		{Key: "name"},
		{Key: "score"},
		{Key: "count"},
		sortCreateTime,
		sortUpdateTime,
	},
)

var builtins = map[Name]*Dialect{
	Image:  imageDialect,
	Book:   bookDialect,
	Source: sourceDialect,
	Topic:  topicDialect,
	Author: authorDialect,
}

// Lookup returns the built-in dialect with the given name.
func Lookup(name Name) (*Dialect, error) {
	d, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (valid: %v)", name, Names())
	}
	return d, nil
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name Name) *Dialect {
	d, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names lists the built-in dialects, sorted.
func Names() []Name {
	out := make([]Name, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
