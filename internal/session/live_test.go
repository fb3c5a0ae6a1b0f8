package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/mocks"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/stretchr/testify/require"
)

func runLive(t *testing.T, live *LiveTrading, stream *mocks.MockTradeStream) <-chan error {
	t.Helper()
	errChan := make(chan error, 1)
	go func() {
		errChan <- live.Run(stream)
	}()
	return errChan
}

func waitErr(t *testing.T, errChan <-chan error) error {
	t.Helper()
	select {
	case err := <-errChan:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("live trading session did not finish")
		return nil
	}
}

func nextStatus(t *testing.T, stream *mocks.MockTradeStream) trading.TradeStatus {
	t.Helper()
	select {
	case status := <-stream.Statuses():
		return status
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a trade status")
		return trading.TradeStatus{}
	}
}

func TestLiveTrading_RejectedThenExecuted(t *testing.T) {
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(context.Background(), 2)
	stream.Push(order("ORDER-0", "0", 0))
	stream.Push(order("ORDER-1", "106", 10))
	stream.CloseSend()

	require.NoError(t, waitErr(t, runLive(t, live, stream)))

	sent := stream.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, "ORDER-0", sent[0].OrderID)
	require.Equal(t, trading.StatusRejected, sent[0].Status)
	require.Equal(t, MessageInvalidQuantity, sent[0].Message)
	require.Equal(t, "ORDER-1", sent[1].OrderID)
	require.Equal(t, trading.StatusExecuted, sent[1].Status)
	require.Equal(t, MessageExecuted, sent[1].Message)
}

func TestLiveTrading_FIFOOneStatusPerOrder(t *testing.T) {
	const n = 500
	events := mocks.NewMockEventPublisher()
	live := NewLiveTrading(LiveTradingOptions{Buffer: 4}, Deps{Events: events})
	stream := mocks.NewMockTradeStream(context.Background(), 0)
	errChan := runLive(t, live, stream)

	for i := 0; i < n; i++ {
		stream.Push(order(fmt.Sprintf("ORDER-%d", i), "1", int64(i%3)))
	}
	stream.CloseSend()
	require.NoError(t, waitErr(t, errChan))

	sent := stream.Sent()
	require.Len(t, sent, n)
	for i, status := range sent {
		require.Equal(t, fmt.Sprintf("ORDER-%d", i), status.OrderID)
		if i%3 == 0 {
			require.Equal(t, trading.StatusRejected, status.Status)
		} else {
			require.Equal(t, trading.StatusExecuted, status.Status)
		}
		if i > 0 {
			require.False(t, status.Timestamp.Before(sent[i-1].Timestamp))
		}
	}

	published := events.Events()
	require.Len(t, published, n)
	for i, event := range published {
		require.Equal(t, trading.EventTradeStatus, event.Type)
		require.Equal(t, live.ID(), event.SessionID)
		require.Equal(t, sent[i].OrderID, event.TradeStatus.OrderID)
	}
}

func TestLiveTrading_StatusBeforeInboundCompletes(t *testing.T) {
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(context.Background(), 0)
	errChan := runLive(t, live, stream)

	// every status arrives while the caller still holds its side open
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("ORDER-%d", i)
		stream.Push(order(id, "105", int64(10*i)))
		status := nextStatus(t, stream)
		require.Equal(t, id, status.OrderID)
	}

	stream.CloseSend()
	require.NoError(t, waitErr(t, errChan))
	require.Len(t, stream.Sent(), 5)
}

func TestLiveTrading_InboundErrorStopsSession(t *testing.T) {
	recvErr := errors.New("stream reset")
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(context.Background(), 0)
	errChan := runLive(t, live, stream)

	for i := 0; i < 3; i++ {
		stream.Push(order(fmt.Sprintf("ORDER-%d", i), "1", 1))
		nextStatus(t, stream)
	}
	stream.FailRecv(recvErr)

	err := waitErr(t, errChan)
	require.ErrorIs(t, err, recvErr)
	require.Len(t, stream.Sent(), 3)
}

func TestLiveTrading_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(ctx, 0)
	errChan := runLive(t, live, stream)

	stream.Push(order("ORDER-0", "1", 1))
	nextStatus(t, stream)
	cancel()

	err := waitErr(t, errChan)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, stream.Sent(), 1)
}

func TestLiveTrading_SendFailure(t *testing.T) {
	sendErr := errors.New("write failed")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := mocks.NewMockEventPublisher()
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{Events: events})
	stream := mocks.NewMockTradeStream(ctx, 1)
	stream.SetError(sendErr)
	stream.Push(order("ORDER-0", "1", 1))

	err := waitErr(t, runLive(t, live, stream))
	require.ErrorIs(t, err, sendErr)
	require.Empty(t, events.Events())
}

func TestLiveTrading_DemoDriverOrders(t *testing.T) {
	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(context.Background(), 10)
	for i := 0; i < 10; i++ {
		stream.Push(order(fmt.Sprintf("ORDER-%d", i), fmt.Sprint(105*i+i), int64(10*i)))
	}
	stream.CloseSend()

	require.NoError(t, waitErr(t, runLive(t, live, stream)))

	sent := stream.Sent()
	require.Len(t, sent, 10)
	require.Equal(t, trading.StatusRejected, sent[0].Status)
	for _, status := range sent[1:] {
		require.Equal(t, trading.StatusExecuted, status.Status)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLiveTrading_PendingRecvReleasedByStreamContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live := NewLiveTrading(DefaultLiveTradingOptions(), Deps{})
	stream := mocks.NewMockTradeStream(ctx, 1)
	stream.SetError(errors.New("write failed"))
	stream.Push(order("ORDER-0", "1", 1))

	require.Error(t, waitErr(t, runLive(t, live, stream)))

	// the caller never closed its side, so the receiver is still parked in Recv
	waitFor(t, func() bool { return stream.Waiting() == 1 }, "receiver is not waiting in Recv")

	cancel()
	waitFor(t, func() bool { return stream.Waiting() == 0 }, "receiver still blocked after the stream context ended")
}

func TestLiveTrading_SessionsDoNotShareState(t *testing.T) {
	events := mocks.NewMockEventPublisher()
	executed := NewLiveTrading(DefaultLiveTradingOptions(), Deps{Events: events})
	rejected := NewLiveTrading(DefaultLiveTradingOptions(), Deps{Events: events})
	require.NotEqual(t, executed.ID(), rejected.ID())

	const n = 20
	executedStream := mocks.NewMockTradeStream(context.Background(), 0)
	rejectedStream := mocks.NewMockTradeStream(context.Background(), 0)
	executedErr := runLive(t, executed, executedStream)
	rejectedErr := runLive(t, rejected, rejectedStream)

	// both sessions see the same order ids, interleaved
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ORDER-%d", i)
		executedStream.Push(order(id, "10", 1))
		rejectedStream.Push(order(id, "10", 0))
	}
	executedStream.CloseSend()
	rejectedStream.CloseSend()
	require.NoError(t, waitErr(t, executedErr))
	require.NoError(t, waitErr(t, rejectedErr))

	check := func(stream *mocks.MockTradeStream, want trading.Status) {
		t.Helper()
		sent := stream.Sent()
		require.Len(t, sent, n)
		for i, status := range sent {
			require.Equal(t, fmt.Sprintf("ORDER-%d", i), status.OrderID)
			require.Equal(t, want, status.Status)
		}
	}
	check(executedStream, trading.StatusExecuted)
	check(rejectedStream, trading.StatusRejected)

	bySession := map[string][]trading.TradeStatus{}
	for _, event := range events.Events() {
		bySession[event.SessionID] = append(bySession[event.SessionID], *event.TradeStatus)
	}
	require.Len(t, bySession, 2)
	require.Equal(t, executedStream.Sent(), bySession[executed.ID()])
	require.Equal(t, rejectedStream.Sent(), bySession[rejected.ID()])
}
