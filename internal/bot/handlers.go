package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"monitor-precos/internal/database"
	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
	"monitor-precos/internal/monitor"
	"monitor-precos/internal/scraper"
)

const (
	defaultHistoryDays = 30
	maxHistoryLines    = 20
)

var errInvalidTarget = errors.New("preço alvo inválido")

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// parseTarget aceita "3000", "2999.90" ou "2999,90"
func parseTarget(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "$")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.NullDecimal{}, errInvalidTarget
	}
	return decimal.NewNullDecimal(d.Round(2)), nil
}

func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func formatPrice(currency string, price decimal.Decimal) string {
	if currency == "" {
		return price.StringFixed(2)
	}
	return currency + " " + price.StringFixed(2)
}

func formatTarget(p models.Product) string {
	if !p.HasTarget() {
		return "sem preço alvo"
	}
	return p.TargetPrice.Decimal.StringFixed(2)
}

func stockLabel(inStock bool) string {
	if inStock {
		return "em estoque"
	}
	return "indisponível"
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `🤖 <b>Bot de Monitoramento de Preços</b>

<b>Comandos disponíveis:</b>

<b>/add</b> - Adicionar novo produto para monitorar
Uso: /add &lt;URL&gt; [preço_alvo] [nome]
Exemplo: /add https://www.amazon.com/dp/B0XXXX 49.90 Fone Bluetooth

<b>/list</b> - Listar todos os produtos monitorados

<b>/remove &lt;id&gt;</b> - Remover produto do monitoramento

<b>/target &lt;id&gt; [preço_alvo]</b> - Alterar (ou remover) o preço alvo

<b>/check &lt;id&gt;</b> - Verificar preço de um produto agora

<b>/checkall</b> - Verificar todos os produtos agora

<b>/stats &lt;id&gt;</b> - Menor, maior e média dos preços

<b>/history &lt;id&gt; [dias]</b> - Histórico de preços (padrão: 30 dias)

<b>/alerts</b> - Alertas cuja notificação falhou

<b>/help</b> - Mostrar esta mensagem de ajuda
`
	b.replyHTML(chatID, helpText)
}

func (b *Bot) handleAddProduct(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 || !validURL(args[0]) {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /add <URL> [preço_alvo] [nome]\n\nExemplo: /add https://www.amazon.com/dp/B0XXXX 49.90 Fone Bluetooth")
		return
	}

	productURL := args[0]
	var target decimal.NullDecimal
	nameParts := args[1:]
	if len(args) > 1 {
		if t, err := parseTarget(args[1]); err == nil {
			target = t
			nameParts = args[2:]
		}
	}
	name := strings.Join(nameParts, " ")
	retailer := scraper.DetectRetailer(productURL)

	id, err := b.store.AddProduct(ctx, productURL, name, retailer, target)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyMonitored) {
			b.reply(chatID, "❌ Este produto já está sendo monitorado.")
		} else {
			b.logger.Error("erro ao adicionar produto", logger.String("url", productURL), logger.Error(err))
			b.reply(chatID, fmt.Sprintf("❌ Erro ao adicionar produto: %v", err))
		}
		return
	}

	b.logger.Info("produto adicionado",
		logger.Int64("product_id", id),
		logger.String("retailer", retailer),
		logger.String("url", productURL))

	response := fmt.Sprintf(
		"✅ Produto adicionado com sucesso!\n\n"+
			"ID: %d\n"+
			"Nome: %s\n"+
			"Loja: %s\n"+
			"URL: %s",
		id, models.Product{Name: name}.DisplayName(), retailer, productURL,
	)
	if target.Valid {
		response += fmt.Sprintf("\nPreço alvo: %s", target.Decimal.StringFixed(2))
	}

	// Primeira leitura de preço
	res, err := b.checker.CheckOne(ctx, id)
	switch {
	case err != nil:
		b.logger.Warn("erro na primeira verificação", logger.Int64("product_id", id), logger.Error(err))
	case res != nil && res.Observation != nil:
		obs := res.Observation
		response += fmt.Sprintf("\nPreço atual: %s", formatPrice(obs.Currency, obs.Price))
		if target.Valid {
			if obs.Price.LessThanOrEqual(target.Decimal) {
				response += "\n🎉 Produto já está abaixo do preço alvo!"
			} else {
				response += fmt.Sprintf("\n💡 Faltam %s para atingir o preço alvo", obs.Price.Sub(target.Decimal).StringFixed(2))
			}
		}
	case res != nil && res.ExtractErr != nil:
		response += "\n⚠️ Não foi possível ler o preço agora; será tentado na próxima verificação."
	}

	b.reply(chatID, response)
}

func (b *Bot) handleListProducts(ctx context.Context, chatID int64) {
	products, err := b.store.ListActive(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao listar produtos: %v", err))
		return
	}

	if len(products) == 0 {
		b.reply(chatID, "📋 Nenhum produto sendo monitorado no momento.")
		return
	}

	var response strings.Builder
	response.WriteString("📋 <b>Produtos em Monitoramento:</b>\n\n")
	for _, p := range products {
		response.WriteString(fmt.Sprintf("🆔 <b>ID: %d</b>\n", p.ID))
		response.WriteString(fmt.Sprintf("📦 %s (%s)\n", escapeHTML(p.DisplayName()), escapeHTML(p.Retailer)))
		response.WriteString(fmt.Sprintf("🎯 Preço alvo: %s\n", formatTarget(p)))
		response.WriteString(fmt.Sprintf("🔗 %s\n\n", escapeHTML(p.URL)))
	}

	b.replyHTML(chatID, response.String())
}

func (b *Bot) handleRemoveProduct(ctx context.Context, chatID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /remove <id>\n\nExemplo: /remove 1")
		return
	}

	product, err := b.store.FindByID(ctx, id)
	if err != nil || product == nil {
		b.reply(chatID, "❌ Produto não encontrado.")
		return
	}

	if err := b.store.DeactivateProduct(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao remover produto: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("✅ Produto removido: %s", product.DisplayName()))
}

func (b *Bot) handleTarget(ctx context.Context, chatID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /target <id> [preço_alvo]\n\nExemplo: /target 1 49.90")
		return
	}

	var target decimal.NullDecimal
	if len(args) > 1 {
		t, err := parseTarget(args[1])
		if err != nil {
			b.reply(chatID, "❌ Preço inválido. Use um valor numérico positivo.")
			return
		}
		target = t
	}

	product, err := b.store.FindByID(ctx, id)
	if err != nil || product == nil {
		b.reply(chatID, "❌ Produto não encontrado.")
		return
	}

	if err := b.store.UpdateTargetPrice(ctx, id, target); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao alterar preço alvo: %v", err))
		return
	}

	if !target.Valid {
		b.reply(chatID, fmt.Sprintf("✅ Preço alvo removido: %s", product.DisplayName()))
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ Novo preço alvo de %s: %s", product.DisplayName(), target.Decimal.StringFixed(2)))
}

func (b *Bot) handleCheckProduct(ctx context.Context, chatID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /check <id>\n\nExemplo: /check 1")
		return
	}

	res, err := b.checker.CheckOne(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao verificar preço: %v", err))
		return
	}
	if res == nil {
		b.reply(chatID, "❌ Produto não encontrado.")
		return
	}
	if res.Observation == nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao buscar preço: %v", res.ExtractErr))
		return
	}

	b.replyHTML(chatID, formatCheck(res))
}

func formatCheck(res *monitor.CheckResult) string {
	obs := res.Observation
	response := fmt.Sprintf(
		"📊 <b>Produto: %s</b>\n\n"+
			"Preço atual: %s (%s)\n"+
			"Preço alvo: %s\n"+
			"Link: %s",
		escapeHTML(res.Product.DisplayName()),
		formatPrice(obs.Currency, obs.Price),
		stockLabel(obs.InStock),
		formatTarget(res.Product),
		escapeHTML(res.Product.URL),
	)
	if res.Alert != nil {
		if res.Alert.NotificationSent {
			response += "\n\n🎉 <b>Preço alvo atingido!</b> Alerta enviado."
		} else {
			response += "\n\n🎉 <b>Preço alvo atingido!</b> O alerta não pôde ser enviado."
		}
	}
	return response
}

func (b *Bot) handleCheckAll(ctx context.Context, chatID int64) {
	b.reply(chatID, "⏳ Verificando todos os produtos...")

	go func() {
		report, err := b.batch.Trigger(ctx)
		switch {
		case errors.Is(err, monitor.ErrBusy):
			b.reply(chatID, "⏳ Já existe uma verificação em andamento.")
		case err != nil:
			b.reply(chatID, fmt.Sprintf("❌ Erro na verificação: %v", err))
		default:
			b.reply(chatID, formatReport(report))
		}
	}()
}

func formatReport(r monitor.BatchReport) string {
	return fmt.Sprintf(
		"✅ Verificação concluída\n\n"+
			"Verificados: %d\n"+
			"Registrados: %d\n"+
			"Falhas: %d\n"+
			"Alertas: %d",
		r.Checked, r.Recorded, r.Failed, r.Alerts,
	)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /stats <id>\n\nExemplo: /stats 1")
		return
	}

	product, err := b.store.FindByID(ctx, id)
	if err != nil || product == nil {
		b.reply(chatID, "❌ Produto não encontrado.")
		return
	}

	s, err := b.checker.GetStats(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao calcular estatísticas: %v", err))
		return
	}

	b.replyHTML(chatID, formatStats(*product, s))
}

func formatStats(p models.Product, s models.PriceStats) string {
	if s.Count == 0 {
		return fmt.Sprintf("📈 <b>%s</b>\n\nNenhum preço registrado ainda.", escapeHTML(p.DisplayName()))
	}
	return fmt.Sprintf(
		"📈 <b>%s</b>\n\n"+
			"Leituras: %d\n"+
			"Menor preço: %s\n"+
			"Maior preço: %s\n"+
			"Preço médio: %s",
		escapeHTML(p.DisplayName()),
		s.Count,
		s.Lowest.Decimal.StringFixed(2),
		s.Highest.Decimal.StringFixed(2),
		s.Average.Decimal.StringFixed(2),
	)
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /history <id> [dias]\n\nExemplo: /history 1 7")
		return
	}

	days := defaultHistoryDays
	if len(args) > 1 {
		d, err := strconv.Atoi(args[1])
		if err != nil || d <= 0 {
			b.reply(chatID, "❌ Número de dias inválido.")
			return
		}
		days = d
	}

	since := b.now().Add(-time.Duration(days) * 24 * time.Hour)
	history, err := b.checker.GetHistory(ctx, id, since)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao buscar histórico: %v", err))
		return
	}

	b.replyHTML(chatID, formatHistory(id, days, history))
}

// formatHistory mostra só as leituras mais recentes
func formatHistory(id int64, days int, history []models.PriceObservation) string {
	if len(history) == 0 {
		return fmt.Sprintf("🕐 Nenhum preço registrado para o produto %d nos últimos %d dias.", id, days)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🕐 <b>Histórico do produto %d (%d dias)</b>\n\n", id, days))
	if len(history) > maxHistoryLines {
		sb.WriteString(fmt.Sprintf("(mostrando as últimas %d de %d leituras)\n", maxHistoryLines, len(history)))
		history = history[len(history)-maxHistoryLines:]
	}
	for _, obs := range history {
		line := fmt.Sprintf("%s  %s", obs.ScrapedAt.Format("02/01/2006 15:04"), formatPrice(obs.Currency, obs.Price))
		if !obs.InStock {
			line += " (indisponível)"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (b *Bot) handleAlerts(ctx context.Context, chatID int64) {
	alerts, err := b.store.UnsentAlerts(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao buscar alertas: %v", err))
		return
	}
	if len(alerts) == 0 {
		b.reply(chatID, "✅ Nenhum alerta pendente.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔔 Alertas não enviados:\n\n")
	for _, a := range alerts {
		sb.WriteString(fmt.Sprintf("Produto %d: %s em %s\n",
			a.ProductID, a.TriggeredPrice.StringFixed(2), a.TriggeredAt.Format("02/01/2006 15:04")))
	}
	b.reply(chatID, sb.String())
}
