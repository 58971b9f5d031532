package render

// smartLinkSDK is loaded on preview pages only.
const smartLinkSDK = "https://cdn.jsdelivr.net/npm/@kontent-ai/smart-link@3/dist/kontent-smart-link.umd.min.js"

// templates holds every page and component template of the site.
const templates = `
{{define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if .Title}}{{.Title}} | {{end}}Boulevard</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body data-kontent-project-id="{{.EnvironmentID}}" data-kontent-language-codename="{{.Language}}" data-carousel-interval="{{.Interval}}"{{if .Session}} data-session="{{.Session}}"{{end}}{{if .Preview}} data-preview="true"{{end}}>
  <div id="header">{{.Header}}</div>
  <main id="main">{{.Main}}</main>
  {{if .Preview}}<script src="` + smartLinkSDK + `"></script>{{end}}
  <script src="/static/site.js"></script>
</body>
</html>{{end}}

{{define "header"}}<header class="site-header">
  <div class="header-grid">
    <a class="logo" href="{{.Home}}">Boulevard</a>
    <nav class="site-nav">
      <menu>
        {{range .Nav}}<li class="nav-item{{if .Subpages}} has-dropdown{{end}}">
          <a href="{{.Link}}">{{.Name}}</a>
          {{if .Subpages}}{{with .Columns}}<div class="dropdown">
            <div class="dropdown-grid">
              <div class="dropdown-column">
                <h3>{{.Title}}</h3>
                <ul>{{range .First}}<li><a href="{{.Link}}">{{.Name}}</a></li>{{end}}</ul>
              </div>
              {{if .More}}<div class="dropdown-column">
                <h3>More</h3>
                <ul>{{range .More}}<li><a href="{{.Link}}">{{.Name}}</a></li>{{end}}</ul>
              </div>{{end}}
            </div>
          </div>{{end}}{{end}}
        </li>{{end}}
      </menu>
    </nav>
    <div class="header-actions">
      <a href="#">We're Hiring</a>
      <a href="#">Login</a>
      <a href="#" class="button">GET A DEMO</a>
    </div>
  </div>
  {{with .LangToggle}}<div class="lang-toggle">
    <a href="{{.English}}" class="lang{{if eq .Current "en-US"}} selected{{end}}" hreflang="en-US" aria-label="English">EN</a>
    <a href="{{.Spanish}}" class="lang{{if eq .Current "es-ES"}} selected{{end}}" hreflang="es-ES" aria-label="Español">ES</a>
  </div>{{end}}
</header>{{end}}

{{define "home"}}<section class="hero" {{itemAttr .ItemID}}>
  <h1 {{elementAttr "headline"}}>{{.Headline}}</h1>
  {{if .Body}}<div class="rich-text" {{elementAttr "body"}}>{{.Body}}</div>{{end}}
</section>
{{if .Sections}}<section class="section-cards">
  {{range .Sections}}<a class="section-card" href="{{.Link}}">{{.Name}}</a>{{end}}
</section>{{end}}{{end}}

{{define "blog"}}<section class="blog-hero">
  <h1 class="blog-headline" {{itemAttr .ItemID}} {{elementAttr "headline"}}>{{.Headline}}</h1>
  <div id="carousel-slot">{{template "carousel" .Carousel}}</div>
  {{if .HeroImage}}<img class="hero-image" src="{{.HeroImage}}" alt="{{.HeroAlt}}" width="670" height="440">{{end}}
</section>
{{if .Body}}<section class="blog-intro rich-text" {{itemAttr .ItemID}} {{elementAttr "body"}}>{{.Body}}</section>{{end}}
<section class="blog-list">
  {{range .Rows}}<div class="blog-row blog-row-{{len .}}">{{range .}}{{template "blog_card" .}}{{end}}</div>
  {{else}}<p class="empty">No blog posts found.</p>{{end}}
</section>{{end}}

{{define "carousel"}}{{if .Slides}}<div class="carousel" data-carousel data-index="{{.Index}}">
  {{range $i, $s := .Slides}}<article class="slide{{if $.Active $i}} active{{end}}" data-slide="{{$i}}" {{itemAttr .ItemID}}>
    <div class="slide-image">{{if .Image}}<img src="{{.Image}}" alt="{{.Title}}">{{else}}<div class="no-image">No image available</div>{{end}}</div>
    <div class="slide-content">
      {{with .FirstTag}}<span class="tag">{{.}}</span>{{end}}
      <h2>{{.Title}}</h2>
      <div class="summary">{{.Summary}}</div>
      <a class="read-more" href="{{.Link}}">Read Article</a>
    </div>
  </article>{{end}}
  {{if gt (len .Slides) 1}}<div class="dots">{{range $i, $s := .Slides}}<button type="button" class="dot{{if $.Active $i}} active{{end}}" data-select="{{$i}}" aria-label="Go to slide {{add $i 1}}"></button>{{end}}</div>
  <div class="progress"><div class="progress-bar"></div></div>{{end}}
</div>{{else}}<div class="carousel-empty"><p>No blog posts available for carousel.</p></div>{{end}}{{end}}

{{define "blog_card"}}<div class="blog-card" {{itemAttr .ItemID}}>
  <div class="card-image">{{if .Image}}<img src="{{.Image}}" alt="{{.Title}}">{{end}}</div>
  <div class="card-content">
    <h2 {{elementAttr "title"}}>{{.Title}}</h2>
    <div class="summary" {{elementAttr "summary"}}>{{.Summary}}</div>
    <a class="read-more" href="{{.Link}}">Read Article</a>
  </div>
</div>{{end}}

{{define "post"}}<article class="post" {{itemAttr .ItemID}}>
  <div class="post-header">
    <a class="back" href="{{.Back}}">← Boulevard Blog</a>
    <div class="post-titles">
      {{if .BlogTags}}<p class="tags" {{elementAttr "blog_post_tags"}}>{{.BlogTags}}</p>{{end}}
      {{if .IndustryTags}}<p class="tags" {{elementAttr "industry_tags"}}>{{.IndustryTags}}</p>{{end}}
      <h2 class="post-title" {{elementAttr "title"}}>{{.Title}}</h2>
    </div>
  </div>
  {{if .Image}}<img class="post-image" src="{{.Image}}" alt="{{.ImageAlt}}" {{elementAttr "image"}}>{{end}}
  {{if .Body}}<div class="post-body rich-text" {{elementAttr "body"}}>{{.Body}}</div>{{end}}
</article>{{end}}

{{define "event"}}<article class="event" {{itemAttr .ItemID}}>
  <div class="event-hero">
    {{if .Image}}<img class="event-image" src="{{.Image}}" alt="{{.ImageAlt}}" {{elementAttr "image"}}>{{end}}
    <div class="event-overlay">
      <h1 {{elementAttr "name"}}>{{.Name}}</h1>
      {{if .Dates}}<span class="dates">{{.Dates}}</span>{{end}}
    </div>
  </div>
  <div class="event-content">
    {{if .Description}}<div class="event-description rich-text" {{elementAttr "description"}}>{{.Description}}</div>{{end}}
    <aside class="event-sidebar">
      {{if .Dates}}<p class="dates">{{.Dates}}</p>{{end}}
      <a class="button" href="#">Get Tickets</a>
      {{if .EventTypes}}<p class="event-types" {{elementAttr "event_type"}}>{{.EventTypes}}</p>{{end}}
    </aside>
  </div>
</article>{{end}}

{{define "fact_section"}}<section class="fact-section style-{{.Style}}" {{itemAttr .ItemID}}>
  {{if .Title}}<h2 {{elementAttr "title"}}>{{.Title}}</h2>{{end}}
  {{if .Facts}}<div class="facts">{{range .Facts}}<div class="fact" {{itemAttr .ItemID}}>
    {{if .Value}}<div class="fact-value" {{elementAttr "percentage_value"}}>{{.Value}}%</div>{{end}}
    {{if .Label}}<div class="fact-label" {{elementAttr "label"}}>{{.Label}}</div>{{end}}
  </div>{{end}}</div>{{end}}
  {{if .Disclaimer}}<p class="disclaimer" {{elementAttr "disclaimer"}}>{{.Disclaimer}}</p>{{end}}
</section>{{end}}

{{define "not_found"}}<section class="state not-found"><h1>Not found</h1><p>{{.}}</p></section>{{end}}

{{define "error"}}<section class="state error"><h1>Something went wrong</h1><p>{{.}}</p></section>{{end}}
`
