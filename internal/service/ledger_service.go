package service

import (
	"sort"
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// 台账条目类型
const (
	LedgerEntryKindRedemption = "redemption"   // 在线订单结算扣减
	LedgerEntryKindManual     = "manual"       // 人工交易扣减
	LedgerEntryKindLegacy     = "legacy_order" // 旧订单回溯（没有兑换快照，靠费用行识别）
)

// LedgerEntry 台账条目
type LedgerEntry struct {
	Kind        string       `json:"kind"`
	At          time.Time    `json:"at"`
	Description string       `json:"description"`
	Amount      models.Money `json:"amount"` // 扣减金额（正数）
	OrderID     uint         `json:"order_id,omitempty"`
	OrderNo     string       `json:"order_no,omitempty"`
}

// LedgerReconciliation 台账对账结果
type LedgerReconciliation struct {
	ExpectedRemaining models.Money `json:"expected_remaining"` // 原始面额减全部扣减
	Discrepancy       bool         `json:"discrepancy"`        // 与实际余额不一致
}

// LedgerView 单张券的完整台账视图
type LedgerView struct {
	CertCode        string                `json:"cert_code"`
	SerialRaw       int64                 `json:"serial_raw"`
	Materialized    bool                  `json:"materialized"` // 余额记录是否已建账
	OriginalAmount  models.Money          `json:"original_amount"`
	RemainingAmount models.Money          `json:"remaining_amount"`
	InquiryID       *uint                 `json:"inquiry_id,omitempty"`
	Purchaser       string                `json:"purchaser,omitempty"` // 档案里的购买人
	Recipient       string                `json:"recipient,omitempty"` // 档案里的收件人
	Entries         []LedgerEntry         `json:"entries"`
	Reconciliation  *LedgerReconciliation `json:"reconciliation,omitempty"`
}

// LedgerService 台账服务。
// 把兑换流水、人工交易、订单快照与旧订单费用行回溯合并成一张完整台账。
type LedgerService struct {
	certSvc    *CertificateService
	archiveSvc *ArchiveService
	orderRepo  repository.OrderRepository
	manualRepo repository.ManualTransactionRepository
	logRepo    repository.RedemptionLogRepository
}

// NewLedgerService 创建台账服务
func NewLedgerService(
	certSvc *CertificateService,
	archiveSvc *ArchiveService,
	orderRepo repository.OrderRepository,
	manualRepo repository.ManualTransactionRepository,
	logRepo repository.RedemptionLogRepository,
) *LedgerService {
	return &LedgerService{
		certSvc:    certSvc,
		archiveSvc: archiveSvc,
		orderRepo:  orderRepo,
		manualRepo: manualRepo,
		logRepo:    logRepo,
	}
}

// View 构建单张券的台账视图。
// 没有余额记录但档案里有购买留言的券也能看（未建账状态）。
func (s *LedgerService) View(entered string) (*LedgerView, error) {
	codec := s.certSvc.Codec()
	serial := codec.ToSerial(entered)
	if serial <= 0 {
		return nil, ErrCertificateCodeInvalid
	}
	code := codec.ToCode(serial)

	balance, err := s.certSvc.GetByCode(code)
	if err != nil {
		return nil, err
	}

	view := &LedgerView{
		CertCode:  code,
		SerialRaw: serial,
	}
	var record *models.InquiryRecord
	if balance != nil {
		view.Materialized = true
		view.OriginalAmount = balance.OriginalAmount
		view.RemainingAmount = balance.RemainingAmount
		view.InquiryID = balance.InquiryID
		if balance.InquiryID != nil {
			record, _ = s.archiveSvc.RecordByID(*balance.InquiryID)
		}
	} else {
		// 未建账：面额直接取档案记录，没有任何扣减
		lookup, lookupErr := s.archiveSvc.FindRecordBySerial(serial, entered)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if lookup.Record == nil {
			return nil, ErrCertificateNotFound
		}
		amount, ok := s.archiveSvc.ExtractAmount(lookup.Record)
		if !ok {
			return nil, ErrArchiveAmountMissing
		}
		recordID := lookup.Record.ID
		view.OriginalAmount = amount
		view.RemainingAmount = amount
		view.InquiryID = &recordID
		record = lookup.Record
	}
	// 展示字段尽力而为，档案读不到不影响台账本身
	if record != nil {
		view.Purchaser = record.FromName
		if view.Purchaser == "" {
			view.Purchaser = s.archiveSvc.ExtractField(record, "purchaser_name")
		}
		view.Recipient = s.archiveSvc.ExtractField(record, "recipient_name")
	}

	entries, err := s.collectEntries(code, serial)
	if err != nil {
		return nil, err
	}
	view.Entries = entries

	if view.Materialized {
		view.Reconciliation = reconcile(view.OriginalAmount, view.RemainingAmount, entries)
	}
	return view, nil
}

// collectEntries 合并各来源的扣减记录，订单按 ID 去重
func (s *LedgerService) collectEntries(code string, serial int64) ([]LedgerEntry, error) {
	entries := make([]LedgerEntry, 0, 8)
	seenOrders := make(map[uint]struct{})

	logs, err := s.logRepo.ListBySerial(serial)
	if err != nil {
		return nil, err
	}
	for _, log := range logs {
		entry := LedgerEntry{
			Kind:        LedgerEntryKindRedemption,
			At:          log.CreatedAt,
			Description: "Online order redemption",
			Amount:      log.Amount,
			OrderID:     log.OrderID,
		}
		if order, orderErr := s.orderRepo.GetByID(log.OrderID); orderErr == nil && order != nil {
			entry.OrderNo = order.OrderNo
		}
		entries = append(entries, entry)
		seenOrders[log.OrderID] = struct{}{}
	}

	manuals, err := s.manualRepo.ListBySerial(serial)
	if err != nil {
		return nil, err
	}
	for _, txn := range manuals {
		entries = append(entries, LedgerEntry{
			Kind:        LedgerEntryKindManual,
			At:          txn.CreatedAt,
			Description: manualItemsSummary(txn.Items),
			Amount:      txn.ItemsTotal,
		})
	}

	// 订单快照兜底：结算流水缺失的已扣订单仍然要出现在台账里
	orders, err := s.orderRepo.ListByRedeemCode(code)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if _, ok := seenOrders[order.ID]; ok {
			continue
		}
		if !order.RedeemDeducted || !order.RedeemAmount.Decimal.IsPositive() {
			continue
		}
		entries = append(entries, LedgerEntry{
			Kind:        LedgerEntryKindRedemption,
			At:          order.UpdatedAt,
			Description: "Online order redemption",
			Amount:      order.RedeemAmount,
			OrderID:     order.ID,
			OrderNo:     order.OrderNo,
		})
		seenOrders[order.ID] = struct{}{}
	}

	// 旧数据没有兑换快照，只能靠费用行名称回溯
	legacy, err := s.orderRepo.ListByFeeLabel(FeeLabel(code))
	if err != nil {
		return nil, err
	}
	for _, order := range legacy {
		if _, ok := seenOrders[order.ID]; ok {
			continue
		}
		amount := legacyFeeAmount(order, code)
		if !amount.Decimal.IsPositive() {
			continue
		}
		entries = append(entries, LedgerEntry{
			Kind:        LedgerEntryKindLegacy,
			At:          order.CreatedAt,
			Description: "Online order redemption (legacy)",
			Amount:      amount,
			OrderID:     order.ID,
			OrderNo:     order.OrderNo,
		})
		seenOrders[order.ID] = struct{}{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.After(entries[j].At)
	})
	return entries, nil
}

func reconcile(original, remaining models.Money, entries []LedgerEntry) *LedgerReconciliation {
	spent := decimal.Zero
	for _, entry := range entries {
		spent = spent.Add(entry.Amount.Decimal)
	}
	expected := original.Decimal.Sub(spent).Round(2)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	return &LedgerReconciliation{
		ExpectedRemaining: models.NewMoneyFromDecimal(expected),
		Discrepancy:       !expected.Equal(remaining.Decimal.Round(2)),
	}
}

func manualItemsSummary(items models.ManualItemList) string {
	if len(items) == 0 {
		return "In-store transaction"
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return "In-store: " + strings.Join(names, ", ")
}

func legacyFeeAmount(order models.Order, code string) models.Money {
	label := FeeLabel(code)
	for _, item := range order.Items {
		if item.Kind == constants.OrderItemKindFee && item.Name == label {
			return models.NewMoneyFromDecimal(item.Amount.Decimal.Abs())
		}
	}
	if order.RedeemAmount.Decimal.IsPositive() {
		return order.RedeemAmount
	}
	return models.Money{}
}
